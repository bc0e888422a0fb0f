package fuzzyphrase

import (
	"encoding/json"
	"os"
	"reflect"
)

const (
	defaultIndexType     = "fuzzy_phrase_set"
	defaultFormatVersion = 1
)

// defaultFuzzyEnabledScripts is the ScriptGate's default script set.
var defaultFuzzyEnabledScripts = []string{"Latin", "Greek", "Cyrillic"}

// metadata is the on-disk descriptor serialized to metadata.json, mirroring
// the original Rust FuzzyPhraseSetMetadata.
type metadata struct {
	IndexType           string   `json:"index_type"`
	FormatVersion       uint32   `json:"format_version"`
	FuzzyEnabledScripts []string `json:"fuzzy_enabled_scripts"`
}

func defaultMetadata() metadata {
	return metadata{
		IndexType:           defaultIndexType,
		FormatVersion:       defaultFormatVersion,
		FuzzyEnabledScripts: append([]string(nil), defaultFuzzyEnabledScripts...),
	}
}

func writeMetadata(path string, m metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return newError(KindIO, err, "creating %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return newError(KindIO, err, "writing %s", path)
	}
	return nil
}

// readMetadata loads and validates metadata.json, rejecting any descriptor
// that does not exactly match the default (spec.md §6: "the reader rejects
// any descriptor not equal to this default").
func readMetadata(path string) (metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return metadata{}, newError(KindNotFound, err, "%s is missing", path)
		}
		return metadata{}, newError(KindIO, err, "reading %s", path)
	}

	var m metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return metadata{}, newError(KindInvalidData, err, "%s is not valid JSON", path)
	}

	want := defaultMetadata()
	if !reflect.DeepEqual(m, want) {
		return metadata{}, newError(KindInvalidData, nil, "%s does not match the expected descriptor: got %+v, want %+v", path, m, want)
	}
	return m, nil
}
