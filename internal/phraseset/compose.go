package phraseset

import (
	"fmt"
	"sort"
)

// Kind discriminates the two TokenVariant shapes.
type Kind int

const (
	// KindFull names a single concrete token id matched with some edit
	// distance (0 for an exact match).
	KindFull Kind = iota
	// KindPrefix names an inclusive range of token ids, legal only at the
	// final level of a combination walk.
	KindPrefix
)

// TokenVariant is a resolved candidate for one slot of a query: either a
// single token id (with an edit distance from the original input word) or,
// at the final slot only, a contiguous id range covering every token that
// extends the input as a prefix.
type TokenVariant struct {
	Kind         Kind
	ID           uint32 // valid when Kind == KindFull
	EditDistance uint8  // valid when Kind == KindFull
	RangeLo      uint32 // valid when Kind == KindPrefix (inclusive)
	RangeHi      uint32 // valid when Kind == KindPrefix (inclusive)
}

// Match is one phrase the composer found: the concrete token-id sequence,
// its total accumulated edit distance, whether it was accepted because it
// is a genuine stored phrase (AcceptsAsPrefix == false) or only because it
// is a valid continuation of one (AcceptsAsPrefix == true), and which kind
// of variant filled the final slot (LastKind). Only the final slot can ever
// be filled by a KindPrefix variant (walk rejects one at any earlier
// level), so LastKind alone tells a caller whether the last id in IDs
// stands for the word actually stored at that id (KindFull) or only for
// however much of some other, longer word the query's own input supplied
// (KindPrefix) — the distinction original_source/src/glue/mod.rs's
// reconstruction switches on per slot (`QueryWord::Full` vs
// `QueryWord::Prefix`), collapsed here to the one slot where it can vary.
type Match struct {
	IDs             []uint32
	Distance        uint8
	AcceptsAsPrefix bool
	LastKind        Kind
}

type frontierEntry struct {
	node     uint32
	dist     uint8
	path     []uint32
	lastKind Kind
}

// edgesInRange returns the contiguous, sorted sub-slice of nodeIdx's edges
// whose TokenID falls in [lo, hi].
func (p *PhraseSet) edgesInRange(nodeIdx, lo, hi uint32) []FlatEdge {
	node := p.nodes[nodeIdx]
	window := p.edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
	start := sort.Search(len(window), func(i int) bool { return window[i].TokenID >= lo })
	end := sort.Search(len(window), func(i int) bool { return window[i].TokenID > hi })
	if start >= end {
		return nil
	}
	return window[start:end]
}

// walk drives the level-synchronous frontier traversal described by
// spec.md's PhraseComposer: at each level every live frontier state is
// advanced by every TokenVariant offered for that level, states whose
// accumulated distance would exceed maxDist are dropped, and accepting
// states are recorded as Matches. When emitIntermediate is false only the
// final level's matches are recorded (used by the plain, non-windowed
// entry points); when true, a genuine accepting state at any level k >= 1
// is recorded (used by the windowed and multi-query entry points).
func (p *PhraseSet) walk(levels [][]TokenVariant, maxDist uint8, emitIntermediate, endsInPrefix bool) ([]Match, error) {
	if len(levels) == 0 {
		return nil, nil
	}

	frontier := []frontierEntry{{node: p.Root()}}
	var results []Match
	seen := make(map[string]bool)

	// Two different variant paths (e.g. one exact, one fuzzy) can land on
	// the same node and so yield the same ID sequence; spec.md §4.3
	// dedups those by exact sequence equality alone, keeping whichever is
	// recorded first.
	record := func(ids []uint32, dist uint8, acceptsAsPrefix bool, lastKind Kind) {
		key := fmt.Sprintf("%v", ids)
		if seen[key] {
			return
		}
		seen[key] = true
		cp := append([]uint32(nil), ids...)
		results = append(results, Match{IDs: cp, Distance: dist, AcceptsAsPrefix: acceptsAsPrefix, LastKind: lastKind})
	}

	for level, variants := range levels {
		if len(variants) == 0 {
			// An empty slot at any level beyond the first prunes the
			// frontier outright: no path can cross a slot with no
			// candidates.
			frontier = nil
			continue
		}
		isLast := level == len(levels)-1

		var next []frontierEntry
		for _, fe := range frontier {
			for _, v := range variants {
				switch v.Kind {
				case KindFull:
					nd, ok := p.Child(fe.node, v.ID)
					if !ok {
						continue
					}
					dist := fe.dist + v.EditDistance
					if dist > maxDist {
						continue
					}
					path := append(append([]uint32(nil), fe.path...), v.ID)
					next = append(next, frontierEntry{node: nd, dist: dist, path: path, lastKind: KindFull})
				case KindPrefix:
					if !isLast {
						return nil, fmt.Errorf("phraseset: a prefix token variant is only legal at the final level, got level %d of %d", level, len(levels))
					}
					for _, e := range p.edgesInRange(fe.node, v.RangeLo, v.RangeHi) {
						path := append(append([]uint32(nil), fe.path...), e.TokenID)
						next = append(next, frontierEntry{node: e.NodeID, dist: fe.dist, path: path, lastKind: KindPrefix})
					}
				}
			}
		}
		frontier = next

		if !isLast && !emitIntermediate {
			continue
		}

		for _, fe := range frontier {
			// A genuine accepting (final) state is always recorded as an
			// exact match, even under endsInPrefix: it is a stored phrase,
			// not merely a prefix of one. Only a state that is reached but
			// not itself final counts as a pure prefix acceptance, per
			// spec.md §4.3's "final state may be any prefix-reachable
			// state".
			if p.IsFinal(fe.node) {
				record(fe.path, fe.dist, false, fe.lastKind)
				continue
			}
			if isLast && endsInPrefix {
				record(fe.path, fe.dist, true, fe.lastKind)
			}
		}
	}

	return results, nil
}

// MatchCombinations enumerates every stored phrase reachable by choosing
// one variant per level, requiring the full sequence to land on a genuine
// accepting (final) state. No level may offer a KindPrefix variant.
func (p *PhraseSet) MatchCombinations(levels [][]TokenVariant, maxDist uint8) ([]Match, error) {
	return p.walk(levels, maxDist, false, false)
}

// MatchCombinationsAsPrefixes is MatchCombinations, except the final level
// may offer KindPrefix variants, and a reached-but-not-final state at the
// final level still counts as a match (it is a valid prefix of some stored
// phrase, even though no phrase ends exactly there).
func (p *PhraseSet) MatchCombinationsAsPrefixes(levels [][]TokenVariant, maxDist uint8) ([]Match, error) {
	return p.walk(levels, maxDist, false, true)
}

// MatchCombinationsAsWindows generalizes both of the above: it records a
// Match for every genuine accepting state reached at any level k >= 1 (not
// only the final one), in addition to the final-level prefix acceptance
// endsInPrefix enables. This is the primitive the windowed and multi-query
// entry points build on, since they need partial-length matches as well as
// full ones.
func (p *PhraseSet) MatchCombinationsAsWindows(levels [][]TokenVariant, maxDist uint8, endsInPrefix bool) ([]Match, error) {
	return p.walk(levels, maxDist, true, endsInPrefix)
}
