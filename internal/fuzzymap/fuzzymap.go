package fuzzymap

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FuzzyMap is a read-only, fully in-memory approximate-match index. Unlike
// prefixset/phraseset it is not mmap'd: the delete-variant map is a Go map
// keyed by hash, which has no flat on-disk representation to reinterpret
// in place, so it is loaded the same way the teacher loads its gzip+gob
// "complex data" block (decompress, gob-decode, keep in memory).
type FuzzyMap struct {
	deletes     map[uint32][]uint32
	runeLen     map[uint32]uint16
	maxDistance uint8
	prefixRunes int
}

// Open loads a fuzzy map previously written by Builder.Finish from dir.
func Open(dir string) (*FuzzyMap, error) {
	hdrBytes, err := os.ReadFile(filepath.Join(dir, "header.bin"))
	if err != nil {
		return nil, fmt.Errorf("fuzzymap: reading header.bin: %w", err)
	}
	var hdr header
	if err := binary.Read(bytes.NewReader(hdrBytes), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("fuzzymap: decoding header.bin: %w", err)
	}
	if hdr.Magic != magic {
		return nil, fmt.Errorf("fuzzymap: %s has an invalid signature", dir)
	}

	f, err := os.Open(filepath.Join(dir, "deletes.bin.gz"))
	if err != nil {
		return nil, fmt.Errorf("fuzzymap: opening deletes.bin.gz: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("fuzzymap: creating gzip reader: %w", err)
	}
	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("fuzzymap: decompressing deletes.bin.gz: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("fuzzymap: closing gzip reader: %w", err)
	}

	var data complexData
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&data); err != nil {
		return nil, fmt.Errorf("fuzzymap: gob-decoding delete index: %w", err)
	}

	return &FuzzyMap{
		deletes:     data.Deletes,
		runeLen:     data.RuneLen,
		maxDistance: hdr.MaxDistance,
		prefixRunes: int(hdr.PrefixRunes),
	}, nil
}

// MaxDistance reports the edit-distance cap this index was built with.
func (m *FuzzyMap) MaxDistance() uint8 {
	return m.maxDistance
}

// Lookup returns every indexed id within maxDist of query, resolving
// candidate ids back to their strings via resolve (the caller's token
// dictionary, e.g. internal/prefixset's Stream-reconstructed word list).
// maxDist is silently clamped to the index's build-time maximum.
func (m *FuzzyMap) Lookup(query string, maxDist uint8, resolve func(id uint32) (string, bool)) []Hit {
	if maxDist > m.maxDistance {
		maxDist = m.maxDistance
	}
	queryRunes := []rune(query)

	prefix := truncateToRunes(queryRunes, m.prefixRunes)
	variants := generateDeletes(prefix, int(maxDist))
	variants = append(variants, prefix)

	seen := make(map[uint32]bool)
	var hits []Hit
	for _, v := range variants {
		ids, ok := m.deletes[fnvHash(v)]
		if !ok {
			continue
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true

			if candLen, ok := m.runeLen[id]; ok {
				diff := len(queryRunes) - int(candLen)
				if diff < 0 {
					diff = -diff
				}
				if diff > int(maxDist) {
					continue
				}
			}

			word, ok := resolve(id)
			if !ok {
				continue
			}
			dist := damerauLevenshtein(queryRunes, []rune(word), int(maxDist))
			if dist <= int(maxDist) {
				hits = append(hits, Hit{ID: id, EditDistance: uint8(dist)})
			}
		}
	}
	return hits
}
