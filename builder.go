package fuzzyphrase

import (
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Guo-astro/fuzzy-phrase/internal/fuzzymap"
	"github.com/Guo-astro/fuzzy-phrase/internal/phraseset"
	"github.com/Guo-astro/fuzzy-phrase/internal/prefixset"
	"github.com/Guo-astro/fuzzy-phrase/internal/unicodescript"
)

// FuzzyPhraseSetBuilder accumulates phrases word by word and, on Finish,
// renumbers every word lexicographically and streams the three on-disk
// collaborators in one pass. Grounded on the original
// FuzzyPhraseSetBuilder::{new,insert,insert_str,finish}; Finish consumes
// the builder in Rust by taking `self` by value, a guarantee Go's method
// receivers can't express, so a `finished` flag enforces the same
// single-use contract at runtime instead of compile time.
type FuzzyPhraseSetBuilder struct {
	directory    string
	phrases      [][]uint32
	wordsToTmpID map[string]uint32
	nextTmpID    uint32
	finished     atomic.Bool
	logger       *zap.Logger
}

// BuilderOption configures NewBuilder.
type BuilderOption func(*FuzzyPhraseSetBuilder)

// WithBuilderLogger injects a *zap.Logger for build-progress diagnostics.
// The default is a no-op logger.
func WithBuilderLogger(logger *zap.Logger) BuilderOption {
	return func(b *FuzzyPhraseSetBuilder) { b.logger = logger }
}

// NewBuilder creates (or reuses) dir as the target for a fuzzy phrase
// index and returns a builder ready to accept phrases.
func NewBuilder(dir string, opts ...BuilderOption) (*FuzzyPhraseSetBuilder, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, newError(KindAlreadyExists, nil, "%s exists and is not a directory", dir)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newError(KindIO, err, "creating %s", dir)
		}
	default:
		return nil, newError(KindIO, err, "statting %s", dir)
	}

	b := &FuzzyPhraseSetBuilder{
		directory:    dir,
		wordsToTmpID: make(map[string]uint32),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Insert adds one phrase. Each word is assigned a temporary id the first
// time it's seen and reused on later occurrences; words are renumbered
// lexicographically at Finish.
func (b *FuzzyPhraseSetBuilder) Insert(phrase []string) error {
	if b.finished.Load() {
		return newError(KindInvalidData, nil, "builder already finished")
	}

	ids := make([]uint32, len(phrase))
	for i, word := range phrase {
		id, ok := b.wordsToTmpID[word]
		if !ok {
			id = b.nextTmpID
			b.wordsToTmpID[word] = id
			b.nextTmpID++
		}
		ids[i] = id
	}
	b.phrases = append(b.phrases, ids)
	return nil
}

// InsertStr is Insert over a whitespace-split phrase string. It is a
// convenience, not a tokenizer (spec.md §1/§6).
func (b *FuzzyPhraseSetBuilder) InsertStr(phrase string) error {
	return b.Insert(splitWhitespace(phrase))
}

// Finish renumbers every word lexicographically, streams the prefix set,
// fuzzy map, and phrase set sinks in one pass, and writes metadata.json.
// A builder may be finished at most once.
func (b *FuzzyPhraseSetBuilder) Finish() error {
	if !b.finished.CompareAndSwap(false, true) {
		return newError(KindInvalidData, nil, "builder already finished")
	}

	log := b.logger.With(zap.String("dir", b.directory))
	log.Info("finishing fuzzy phrase index build", zap.Int("word_count", len(b.wordsToTmpID)), zap.Int("phrase_count", len(b.phrases)))

	words := make([]string, len(b.wordsToTmpID))
	for word, tmpID := range b.wordsToTmpID {
		words[tmpID] = word
	}
	sortedWords := append([]string(nil), words...)
	sort.Strings(sortedWords)

	gate, err := unicodescript.New(defaultFuzzyEnabledScripts)
	if err != nil {
		return newError(KindInvalidData, err, "building script gate")
	}

	prefixFile, err := os.Create(filepath.Join(b.directory, prefixSetFile))
	if err != nil {
		return newError(KindIO, err, "creating %s", prefixSetFile)
	}
	defer prefixFile.Close()
	prefixBuilder := prefixset.NewBuilder()

	fuzzyDir := filepath.Join(b.directory, fuzzyMapDir)
	if err := os.MkdirAll(fuzzyDir, 0o755); err != nil {
		return newError(KindIO, err, "creating %s", fuzzyDir)
	}
	fuzzyBuilder := fuzzymap.NewBuilder()

	// tmpidsToIDs[tmpID] = final lexicographic id, built while streaming
	// sortedWords (the renumbering the original glue layer performs by
	// enumerating a BTreeMap, here done by sorting the materialized word
	// list since Go has no sorted-map type).
	tmpidsToIDs := make([]uint32, len(words))
	for id, word := range sortedWords {
		id := uint32(id)
		if err := prefixBuilder.Insert(word, id); err != nil {
			return newError(KindInvalidData, err, "inserting word %q into prefix set", word)
		}
		if gate.CanFuzzyMatch(word) {
			fuzzyBuilder.Insert(word, id)
		}
		tmpidsToIDs[b.wordsToTmpID[word]] = id
	}

	if err := prefixBuilder.Finish(prefixFile); err != nil {
		return newError(KindIO, err, "writing %s", prefixSetFile)
	}
	if err := fuzzyBuilder.Finish(fuzzyDir); err != nil {
		return newError(KindIO, err, "writing %s", fuzzyMapDir)
	}

	for _, phrase := range b.phrases {
		for i, tmpID := range phrase {
			phrase[i] = tmpidsToIDs[tmpID]
		}
	}
	sort.Slice(b.phrases, func(i, j int) bool {
		return idSequenceLess(b.phrases[i], b.phrases[j])
	})

	phraseFile, err := os.Create(filepath.Join(b.directory, phraseSetFile))
	if err != nil {
		return newError(KindIO, err, "creating %s", phraseSetFile)
	}
	defer phraseFile.Close()
	phraseBuilder := phraseset.NewBuilder()
	var lastPhrase []uint32
	for _, phrase := range b.phrases {
		if lastPhrase != nil && sequencesEqual(lastPhrase, phrase) {
			continue
		}
		if err := phraseBuilder.Insert(phrase); err != nil {
			return newError(KindInvalidData, err, "inserting phrase into phrase set")
		}
		lastPhrase = phrase
	}
	if err := phraseBuilder.Finish(phraseFile); err != nil {
		return newError(KindIO, err, "writing %s", phraseSetFile)
	}

	if err := writeMetadata(filepath.Join(b.directory, metadataFile), defaultMetadata()); err != nil {
		return err
	}

	log.Info("finished fuzzy phrase index build")
	return nil
}

// idSequenceLess orders phrases lexicographically over their resolved word
// ids, mirroring internal/phraseset's own builder ordering so the stream
// fed to phraseBuilder.Insert arrives strictly ascending.
func idSequenceLess(a, b []uint32) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func sequencesEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
