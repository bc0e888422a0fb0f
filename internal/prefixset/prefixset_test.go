package prefixset

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func buildTestSet(t *testing.T, keys []string) *PrefixSet {
	t.Helper()
	b := NewBuilder()
	for i, k := range keys {
		if err := b.Insert(k, uint32(i)); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}

	path := filepath.Join(t.TempDir(), "prefix.fst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := b.Finish(f); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	set, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = set.Close() })
	return set
}

var sampleWords = []string{
	"100",
	"200",
	"ave",
	"blvd",
	"main",
	"mlk",
	"street",
}

func TestBuilder_Insert_RejectsOutOfOrder(t *testing.T) {
	b := NewBuilder()
	if err := b.Insert("main", 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := b.Insert("ave", 1); err == nil {
		t.Fatal("expected an error inserting a key out of ascending order")
	}
	if err := b.Insert("main", 1); err == nil {
		t.Fatal("expected an error inserting a duplicate key")
	}
}

func TestPrefixSet_Get(t *testing.T) {
	set := buildTestSet(t, sampleWords)

	for i, w := range sampleWords {
		got, ok := set.Get(w)
		if !ok {
			t.Errorf("Get(%q): not found", w)
			continue
		}
		if got != uint32(i) {
			t.Errorf("Get(%q) = %d, want %d", w, got, i)
		}
	}

	if _, ok := set.Get("nope"); ok {
		t.Error("Get(nope) should not be found")
	}
	if _, ok := set.Get("ma"); ok {
		t.Error("Get(ma) is a prefix, not a stored key, and should not be found")
	}
}

func TestPrefixSet_GetPrefixRange(t *testing.T) {
	set := buildTestSet(t, sampleWords)

	lo, hi, ok := set.GetPrefixRange("m")
	if !ok {
		t.Fatal("GetPrefixRange(m): not found")
	}
	// "main" and "mlk" share the "m" prefix; ids were assigned in sorted
	// order so their range is contiguous and covers exactly those two ids.
	wantLo, wantHi := uint32(4), uint32(5)
	if lo != wantLo || hi != wantHi {
		t.Errorf("GetPrefixRange(m) = [%d, %d], want [%d, %d]", lo, hi, wantLo, wantHi)
	}

	if _, _, ok := set.GetPrefixRange("z"); ok {
		t.Error("GetPrefixRange(z) should not be found")
	}

	// A prefix equal to a full stored key includes that key itself.
	lo, hi, ok = set.GetPrefixRange("ave")
	if !ok || lo != 2 || hi != 2 {
		t.Errorf("GetPrefixRange(ave) = [%d, %d], %v; want [2, 2], true", lo, hi, ok)
	}
}

func TestPrefixSet_ContainsPrefix(t *testing.T) {
	set := buildTestSet(t, sampleWords)

	cases := map[string]bool{
		"m":      true,
		"ma":     true,
		"main":   true,
		"maine":  false,
		"":       true,
		"street": true,
		"streets": false,
	}
	for prefix, want := range cases {
		if got := set.ContainsPrefix(prefix); got != want {
			t.Errorf("ContainsPrefix(%q) = %v, want %v", prefix, got, want)
		}
	}
}

func TestPrefixSet_Stream_IsSortedAndComplete(t *testing.T) {
	set := buildTestSet(t, sampleWords)

	entries := set.Stream()
	if len(entries) != len(sampleWords) {
		t.Fatalf("Stream returned %d entries, want %d", len(entries), len(sampleWords))
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		if e.ID != uint32(i) {
			t.Errorf("entry %d: id = %d, want %d", i, e.ID, i)
		}
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("Stream keys not sorted: %v", keys)
	}
	for i, w := range sampleWords {
		if keys[i] != w {
			t.Errorf("Stream()[%d] = %q, want %q", i, keys[i], w)
		}
	}
}

func TestPrefixSet_Len(t *testing.T) {
	set := buildTestSet(t, sampleWords)
	if got := set.Len(); got != len(sampleWords) {
		t.Errorf("Len() = %d, want %d", got, len(sampleWords))
	}
}
