// Package fuzzyphrase implements a compact, disk-resident fuzzy phrase
// index: exact, prefix, fuzzy, windowed, and batched phrase lookup over a
// fixed corpus built once and read many times. It binds together three
// on-disk collaborators — internal/prefixset (a token dictionary),
// internal/fuzzymap (an edit-distance dictionary), and internal/phraseset
// (a phrase automaton) — the way the original Rust fuzzy-phrase crate's
// glue layer does, reworked in the teacher analyzer's mmap-and-flat-array
// idiom.
package fuzzyphrase

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guo-astro/fuzzy-phrase/internal/fuzzymap"
	"github.com/Guo-astro/fuzzy-phrase/internal/phraseset"
	"github.com/Guo-astro/fuzzy-phrase/internal/prefixset"
	"github.com/Guo-astro/fuzzy-phrase/internal/unicodescript"
)

const (
	prefixSetFile = "prefix.fst"
	phraseSetFile = "phrase.fst"
	fuzzyMapDir   = "fuzzy"
	metadataFile  = "metadata.json"
)

// FuzzyPhraseSet is an immutable, thread-safe read-only value once opened:
// all mutable state used while answering a query lives in query-local
// scratch, so a single instance may serve concurrent queries without
// synchronization (spec.md §5).
type FuzzyPhraseSet struct {
	prefixSet  *prefixset.PrefixSet
	phraseSet  *phraseset.PhraseSet
	fuzzyMap   *fuzzymap.FuzzyMap
	scriptGate *unicodescript.Gate
	wordList   []string
	logger     *zap.Logger
}

// OpenOption configures Open/OpenMerging.
type OpenOption func(*openConfig)

type openConfig struct {
	logger *zap.Logger
}

// WithOpenLogger injects a *zap.Logger for open-time diagnostics. The
// default is a no-op logger, matching the Builder's default.
func WithOpenLogger(logger *zap.Logger) OpenOption {
	return func(c *openConfig) { c.logger = logger }
}

// Open loads a fuzzy phrase index previously written by
// FuzzyPhraseSetBuilder.Finish from dir.
func Open(dir string, opts ...OpenOption) (*FuzzyPhraseSet, error) {
	cfg := openConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.With(zap.String("dir", dir))
	log.Info("opening fuzzy phrase index")

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(KindNotFound, err, "index directory %s does not exist", dir)
		}
		return nil, newError(KindIO, err, "statting %s", dir)
	}
	if !info.IsDir() {
		return nil, newError(KindInvalidData, nil, "%s is not a directory", dir)
	}

	if _, err := readMetadata(filepath.Join(dir, metadataFile)); err != nil {
		return nil, err
	}

	ps, err := prefixset.Open(filepath.Join(dir, prefixSetFile))
	if err != nil {
		return nil, newError(KindNotFound, err, "opening %s", prefixSetFile)
	}

	phs, err := phraseset.Open(filepath.Join(dir, phraseSetFile))
	if err != nil {
		_ = ps.Close()
		return nil, newError(KindNotFound, err, "opening %s", phraseSetFile)
	}

	fm, err := fuzzymap.Open(filepath.Join(dir, fuzzyMapDir))
	if err != nil {
		_ = ps.Close()
		_ = phs.Close()
		return nil, newError(KindNotFound, err, "opening %s", fuzzyMapDir)
	}

	gate, err := unicodescript.New(defaultFuzzyEnabledScripts)
	if err != nil {
		_ = ps.Close()
		_ = phs.Close()
		return nil, newError(KindInvalidData, err, "building script gate")
	}

	// Reconstruct the id -> string word list once by streaming the
	// prefix set in order, per spec.md §3's "word list" definition.
	entries := ps.Stream()
	words := make([]string, len(entries))
	for _, e := range entries {
		words[e.ID] = e.Key
	}

	log.Info("opened fuzzy phrase index", zap.Int("word_count", len(words)))

	return &FuzzyPhraseSet{
		prefixSet:  ps,
		phraseSet:  phs,
		fuzzyMap:   fm,
		scriptGate: gate,
		wordList:   words,
		logger:     cfg.logger,
	}, nil
}

// OpenMerging is a supplemental opener, grounded on the teacher's
// mergeFilesWithPrefix: it first reassembles any `<name>.part-NNNN` shards
// found directly under dir into whole artifact files (prefix.fst,
// phrase.fst, and each file under fuzzy/), then delegates to Open. This
// lets a build pipeline ship a large index split across many files without
// changing the on-disk contract Open expects.
func OpenMerging(dir string, opts ...OpenOption) (*FuzzyPhraseSet, error) {
	if err := mergeShardedParts(dir, prefixSetFile); err != nil {
		return nil, err
	}
	if err := mergeShardedParts(dir, phraseSetFile); err != nil {
		return nil, err
	}
	fuzzyDir := filepath.Join(dir, fuzzyMapDir)
	if entries, err := os.ReadDir(fuzzyDir); err == nil {
		stems := map[string]bool{}
		for _, e := range entries {
			if name, ok := shardStem(e.Name()); ok {
				stems[name] = true
			}
		}
		for stem := range stems {
			if err := mergeShardedParts(fuzzyDir, stem); err != nil {
				return nil, err
			}
		}
	}
	return Open(dir, opts...)
}

// shardStem reports whether name looks like "<stem>.part-NNNN" and, if so,
// returns the stem.
func shardStem(name string) (string, bool) {
	idx := strings.LastIndex(name, ".part-")
	if idx < 0 {
		return "", false
	}
	return name[:idx], true
}

// mergeShardedParts reassembles dir/<name>.part-* (sorted lexicographically,
// the same convention the teacher's mergeFilesWithPrefix relies on for its
// morph_aa/morph_ab/... shards) into dir/<name>, if any parts are present.
// If dir/<name> already exists whole, this is a no-op.
func mergeShardedParts(dir, name string) error {
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return newError(KindIO, err, "reading %s", dir)
	}

	prefix := name + ".part-"
	var parts []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			parts = append(parts, e.Name())
		}
	}
	if len(parts) == 0 {
		return nil
	}
	sort.Strings(parts)

	out, err := os.Create(target)
	if err != nil {
		return newError(KindIO, err, "creating %s", target)
	}
	defer out.Close()

	for _, p := range parts {
		in, err := os.Open(filepath.Join(dir, p))
		if err != nil {
			return newError(KindIO, err, "opening shard %s", p)
		}
		_, copyErr := io.Copy(out, in)
		_ = in.Close()
		if copyErr != nil {
			return newError(KindIO, copyErr, "merging shard %s into %s", p, target)
		}
	}
	return nil
}

// resolveWord resolves a token id back to its string, the callback every
// fuzzymap.Lookup call uses to compare candidate words against a query.
func (s *FuzzyPhraseSet) resolveWord(id uint32) (string, bool) {
	if int(id) >= len(s.wordList) {
		return "", false
	}
	return s.wordList[id], true
}

// Close releases the index's memory-mapped files. The FuzzyPhraseSet must
// not be used afterward.
func (s *FuzzyPhraseSet) Close() error {
	var firstErr error
	if err := s.prefixSet.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.phraseSet.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Contains reports whether phrase was inserted by the Builder. A token
// that does not occur anywhere in the dictionary makes the query return
// false without consulting the phrase set (spec.md §8's "missing token"
// property).
func (s *FuzzyPhraseSet) Contains(phrase []string) (bool, error) {
	ids := make([]uint32, len(phrase))
	for i, tok := range phrase {
		id, ok := s.prefixSet.Get(tok)
		if !ok {
			return false, nil
		}
		ids[i] = id
	}
	return s.phraseSet.Contains(ids), nil
}

// ContainsStr is Contains over a whitespace-split phrase string.
func (s *FuzzyPhraseSet) ContainsStr(phrase string) (bool, error) {
	return s.Contains(splitWhitespace(phrase))
}

// ContainsPrefix reports whether phrase is a prefix of some inserted
// phrase: every token but the last must resolve exactly, and the last
// token is matched via its prefix id range.
func (s *FuzzyPhraseSet) ContainsPrefix(phrase []string) (bool, error) {
	if len(phrase) == 0 {
		return false, nil
	}

	ids := make([]uint32, len(phrase)-1)
	for i := 0; i < len(phrase)-1; i++ {
		id, ok := s.prefixSet.Get(phrase[i])
		if !ok {
			return false, nil
		}
		ids[i] = id
	}

	lo, hi, ok := s.prefixSet.GetPrefixRange(phrase[len(phrase)-1])
	if !ok {
		return false, nil
	}

	levels := make([][]phraseset.TokenVariant, len(phrase))
	for i, id := range ids {
		levels[i] = []phraseset.TokenVariant{{Kind: phraseset.KindFull, ID: id}}
	}
	levels[len(phrase)-1] = []phraseset.TokenVariant{{Kind: phraseset.KindPrefix, RangeLo: lo, RangeHi: hi}}

	matches, err := s.phraseSet.MatchCombinationsAsPrefixes(levels, 0)
	if err != nil {
		return false, newError(KindQueryShape, err, "contains_prefix composer walk")
	}
	return len(matches) > 0, nil
}

// ContainsPrefixStr is ContainsPrefix over a whitespace-split phrase
// string.
func (s *FuzzyPhraseSet) ContainsPrefixStr(phrase string) (bool, error) {
	return s.ContainsPrefix(splitWhitespace(phrase))
}
