package phraseset

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// Token ids used across these tests, assigned the way a real build would:
// dense, ascending by the underlying word's lexicographic order.
const (
	id100    = 0
	id200    = 1
	id300    = 2
	idAve    = 3
	idBlvd   = 4
	idMain   = 5
	idMlk    = 6
	idStreet = 7
)

func buildTestPhrases(t *testing.T, phrases [][]uint32) *PhraseSet {
	t.Helper()
	b := NewBuilder()
	sorted := append([][]uint32(nil), phrases...)
	sort.Slice(sorted, func(i, j int) bool { return sequenceLess(sorted[i], sorted[j]) })
	for _, p := range sorted {
		if err := b.Insert(p); err != nil {
			t.Fatalf("Insert(%v): %v", p, err)
		}
	}

	path := filepath.Join(t.TempDir(), "phrase.fst")
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

func samplePhraseSet(t *testing.T) *PhraseSet {
	return buildTestPhrases(t, [][]uint32{
		{id100, idMain, idStreet},
		{id200, idMain, idStreet},
		{id100, idMain, idAve},
		{id300, idMlk, idBlvd},
	})
}

func full(id uint32) TokenVariant { return TokenVariant{Kind: KindFull, ID: id} }

func TestPhraseSet_Contains(t *testing.T) {
	set := samplePhraseSet(t)

	if !set.Contains([]uint32{id100, idMain, idStreet}) {
		t.Error("expected [100, main, street] to be contained")
	}
	if set.Contains([]uint32{id100, idMain}) {
		t.Error("[100, main] is only a prefix, not a stored phrase")
	}
	if set.Contains([]uint32{id100, idMain, idBlvd}) {
		t.Error("[100, main, blvd] was never inserted")
	}
}

func TestMatchCombinations_ExactPhrase(t *testing.T) {
	set := samplePhraseSet(t)

	levels := [][]TokenVariant{
		{full(id100)},
		{full(idMain)},
		{full(idStreet)},
	}
	matches, err := set.MatchCombinations(levels, 0)
	if err != nil {
		t.Fatalf("MatchCombinations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	want := []uint32{id100, idMain, idStreet}
	if !reflect.DeepEqual(matches[0].IDs, want) {
		t.Errorf("IDs = %v, want %v", matches[0].IDs, want)
	}
	if matches[0].AcceptsAsPrefix {
		t.Error("an exact phrase match should not be flagged AcceptsAsPrefix")
	}
}

func TestMatchCombinations_FuzzyWordVariant(t *testing.T) {
	set := samplePhraseSet(t)

	// A fuzzy variant for "main" (ed=1, standing in for e.g. "man") plus
	// the exact ids for 100 and street should still find the stored
	// phrase, within budget.
	levels := [][]TokenVariant{
		{full(id100)},
		{{Kind: KindFull, ID: idMain, EditDistance: 1}},
		{full(idStreet)},
	}
	matches, err := set.MatchCombinations(levels, 1)
	if err != nil {
		t.Fatalf("MatchCombinations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Distance != 1 {
		t.Errorf("Distance = %d, want 1", matches[0].Distance)
	}

	// The same query with a distance budget of 0 must find nothing.
	matches, err = set.MatchCombinations(levels, 0)
	if err != nil {
		t.Fatalf("MatchCombinations: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches with zero budget, want 0", len(matches))
	}
}

func TestMatchCombinations_EmptyLevelsPruneToNoResults(t *testing.T) {
	set := samplePhraseSet(t)

	levels := [][]TokenVariant{
		{full(id100)},
		{}, // unresolved slot
		{full(idStreet)},
	}
	matches, err := set.MatchCombinations(levels, 1)
	if err != nil {
		t.Fatalf("MatchCombinations: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0 once a mid-query slot is unresolved", len(matches))
	}
}

func TestMatchCombinations_EmptyQueryReturnsNoResults(t *testing.T) {
	set := samplePhraseSet(t)
	matches, err := set.MatchCombinations(nil, 1)
	if err != nil {
		t.Fatalf("MatchCombinations: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches for an empty query, want 0", len(matches))
	}
}

func TestMatchCombinationsAsPrefixes_ReachingStoredPhrasesIsExact(t *testing.T) {
	set := samplePhraseSet(t)

	// "100 main" with the final slot as a prefix range covering every
	// token id in [idAve, idStreet] reaches two nodes, "100 main ave" and
	// "100 main street", both of which are themselves genuine stored
	// phrases. Reaching a final state is always an exact match, even
	// though the transition used a Prefix variant (spec.md §4.3: a prefix
	// walk's final state may be any prefix-reachable state, but a node
	// that is itself final is never merely "accepted as a prefix").
	levels := [][]TokenVariant{
		{full(id100)},
		{full(idMain)},
		{{Kind: KindPrefix, RangeLo: idAve, RangeHi: idStreet}},
	}
	matches, err := set.MatchCombinationsAsPrefixes(levels, 0)
	if err != nil {
		t.Fatalf("MatchCombinationsAsPrefixes: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if m.AcceptsAsPrefix {
			t.Errorf("match %v reaches a stored phrase and should not be flagged AcceptsAsPrefix", m.IDs)
		}
		// The final slot was still filled via the Prefix range variant, even
		// though the node it landed on happens to be final: a caller
		// reconstructing this match must know that and substitute its own
		// input for the last slot rather than look up the stored word.
		if m.LastKind != KindPrefix {
			t.Errorf("match %v was reached via a KindPrefix variant and should report LastKind == KindPrefix, got %v", m.IDs, m.LastKind)
		}
	}
}

func TestMatchCombinationsAsPrefixes_ReachingNonFinalStateIsPrefix(t *testing.T) {
	set := samplePhraseSet(t)

	// A single-slot query whose prefix range covers only id300 reaches
	// the "300" node, which is not itself a stored phrase (only "300 mlk
	// blvd" is); it should be accepted purely as a prefix continuation.
	levels := [][]TokenVariant{
		{{Kind: KindPrefix, RangeLo: id300, RangeHi: id300}},
	}
	matches, err := set.MatchCombinationsAsPrefixes(levels, 0)
	if err != nil {
		t.Fatalf("MatchCombinationsAsPrefixes: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if !matches[0].AcceptsAsPrefix {
		t.Errorf("match %v reaches a non-final node and should be flagged AcceptsAsPrefix", matches[0].IDs)
	}
	if matches[0].LastKind != KindPrefix {
		t.Errorf("match %v was reached via a KindPrefix variant and should report LastKind == KindPrefix, got %v", matches[0].IDs, matches[0].LastKind)
	}
	if !reflect.DeepEqual(matches[0].IDs, []uint32{id300}) {
		t.Errorf("IDs = %v, want [id300]", matches[0].IDs)
	}
}

func TestMatchCombinationsAsPrefixes_DistinguishesVariantKindPerMatch(t *testing.T) {
	set := samplePhraseSet(t)

	// The final slot offers both a Full variant (exact id for "street") and
	// a Prefix variant (a range covering only "ave"). Both land on genuine
	// stored phrases, but by different variant kinds; a caller must be able
	// to tell them apart per match to reconstruct each correctly (one from
	// the word list, one from its own input).
	levels := [][]TokenVariant{
		{full(id100)},
		{full(idMain)},
		{full(idStreet), {Kind: KindPrefix, RangeLo: idAve, RangeHi: idAve}},
	}
	matches, err := set.MatchCombinationsAsPrefixes(levels, 0)
	if err != nil {
		t.Fatalf("MatchCombinationsAsPrefixes: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}

	byLastID := make(map[uint32]Match, len(matches))
	for _, m := range matches {
		byLastID[m.IDs[len(m.IDs)-1]] = m
	}

	street, ok := byLastID[idStreet]
	if !ok || street.LastKind != KindFull {
		t.Errorf("match ending in idStreet should report LastKind == KindFull, got %+v", street)
	}
	ave, ok := byLastID[idAve]
	if !ok || ave.LastKind != KindPrefix {
		t.Errorf("match ending in idAve should report LastKind == KindPrefix, got %+v", ave)
	}
}

func TestMatchCombinationsAsPrefixes_RejectsNonFinalPrefixVariant(t *testing.T) {
	set := samplePhraseSet(t)

	levels := [][]TokenVariant{
		{{Kind: KindPrefix, RangeLo: id100, RangeHi: id300}},
		{full(idMain)},
	}
	if _, err := set.MatchCombinationsAsPrefixes(levels, 0); err == nil {
		t.Fatal("expected an error for a prefix variant at a non-final level")
	}
}

func TestMatchCombinationsAsWindows_EmitsIntermediateAndFinal(t *testing.T) {
	// Use a corpus where an intermediate length along the query is itself
	// a stored shorter phrase, so a single walk should surface both.
	set2 := buildTestPhrases(t, [][]uint32{
		{id100, idMain},
		{id100, idMain, idStreet},
	})

	levels := [][]TokenVariant{
		{full(id100)},
		{full(idMain)},
		{full(idStreet)},
	}
	matches, err := set2.MatchCombinationsAsWindows(levels, 0, false)
	if err != nil {
		t.Fatalf("MatchCombinationsAsWindows: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (length-2 and length-3 phrases): %+v", len(matches), matches)
	}

	lengths := map[int]bool{}
	for _, m := range matches {
		lengths[len(m.IDs)] = true
		if m.AcceptsAsPrefix {
			t.Errorf("match %v should not be flagged AcceptsAsPrefix when endsInPrefix is false", m.IDs)
		}
	}
	if !lengths[2] || !lengths[3] {
		t.Errorf("expected both length-2 and length-3 matches, got %v", matches)
	}
}
