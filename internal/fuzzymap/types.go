// Package fuzzymap implements the approximate-match collaborator spec.md
// calls "FuzzyMap": given a query string, a maximum edit distance (capped
// at 1, the value the index was built with), and a resolver from token id
// back to its string, return every indexed id within that distance.
// Grounded on the example corpus's SymSpell implementation (delete-variant
// generation, FNV-hash bucketing, a damerau-Levenshtein final check) and on
// the teacher analyzer's gzip+gob "complex data blob next to a binary
// header" idiom for persisting the variable-size delete index.
package fuzzymap

// maxBuildDistance is the fixed edit-distance cap this index is built for;
// spec.md names this the build-time maximum that caller-supplied distances
// are silently clamped to.
const maxBuildDistance = 1

// prefixRunes bounds how many leading runes of a word contribute delete
// variants, the same memory/fan-out tradeoff the SymSpell reference
// implementation makes.
const prefixRunes = 7

// magic identifies a fuzzy/header.bin file.
var magic = [4]byte{'F', 'Z', 'Y', '1'}

// header is the on-disk file map for header.bin: everything needed to
// validate and size-check the accompanying deletes.bin.gz blob.
type header struct {
	Magic        [4]byte
	MaxDistance  uint8
	PrefixRunes  uint8
	EntryCount   int64
	MaxWordRunes int64
}

// complexData is the gob-encoded, gzip-compressed payload in
// deletes.bin.gz: the delete-variant index and the per-id rune-length
// table used to prefilter candidates before the expensive distance check.
type complexData struct {
	Deletes map[uint32][]uint32 // FNV-1a hash of a delete variant -> token ids
	RuneLen map[uint32]uint16   // token id -> rune length of its word
}

// Hit is one approximate match.
type Hit struct {
	ID           uint32
	EditDistance uint8
}
