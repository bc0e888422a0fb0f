package fuzzyphrase

import (
	"runtime"
	"sort"
	"sync"

	"github.com/Guo-astro/fuzzy-phrase/internal/phraseset"
)

// concurrencyThreshold is the distinct-key count above which the per-token
// dedup fan-out (step 1 of FuzzyMatchMulti) is parallelized over a bounded
// worker pool instead of run on the calling goroutine. Below it, pool
// setup overhead would dominate the work itself.
const concurrencyThreshold = 64

// MultiQuery is one input to FuzzyMatchMulti: a phrase and whether its
// last token should be resolved as a prefix.
type MultiQuery struct {
	Phrase       []string
	EndsInPrefix bool
}

// dedupKey identifies one distinct (token, is-this-a-prefix-position)
// resolution across an entire batch of queries.
type dedupKey struct {
	token        string
	isPrefixSlot bool
}

// FuzzyMatchMulti batches many queries against one reader call, sharing
// per-token resolution work and collapsing chains of queries where one is
// a strict positional prefix of the next into a single phrase-automaton
// walk (spec.md §4.7). Output i corresponds positionally to queries[i].
func (s *FuzzyPhraseSet) FuzzyMatchMulti(queries []MultiQuery, dWord, dPhrase uint8) ([][]FuzzyMatchResult, error) {
	results := make([][]FuzzyMatchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	dedupTable := s.resolveDedupTable(queries, dWord)

	order := make([]int, len(queries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return phraseLess(queries[order[i]].Phrase, queries[order[j]].Phrase)
	})

	i := 0
	for i < len(order) {
		cluster := []int{order[i]}
		j := i
		for j+1 < len(order) {
			curIdx := cluster[len(cluster)-1]
			if queries[curIdx].EndsInPrefix {
				break
			}
			nextIdx := order[j+1]
			if !isStrictPositionalPrefix(queries[curIdx].Phrase, queries[nextIdx].Phrase) {
				break
			}
			cluster = append(cluster, nextIdx)
			j++
		}

		if err := s.walkCluster(cluster, queries, dedupTable, dPhrase, results); err != nil {
			return nil, err
		}
		i = j + 1
	}

	return results, nil
}

// walkCluster assembles the longest member's variant levels from
// dedupTable, runs one phrase-automaton walk, and demultiplexes emitted
// matches back to every cluster member by length: every member but the
// longest has a strictly shorter, distinct length, so length alone
// identifies its owner within this cluster. A match's AcceptsAsPrefix flag
// is not part of the routing key — whether the reached node happens to be
// a stored phrase or only a valid continuation of one is irrelevant to
// which query it answers. Reconstruction instead keys off the match's own
// LastKind: only a match whose final slot was filled by a KindPrefix
// variant substitutes the caller's literal last token; one that landed on
// a stored phrase via an exact or fuzzy KindFull hit is rendered from the
// word list, the same per-slot distinction FuzzyMatchPrefix honors.
func (s *FuzzyPhraseSet) walkCluster(cluster []int, queries []MultiQuery, dedupTable map[dedupKey][]phraseset.TokenVariant, dPhrase uint8, results [][]FuzzyMatchResult) error {
	longestIdx := cluster[len(cluster)-1]
	longest := queries[longestIdx]

	levels := make([][]phraseset.TokenVariant, len(longest.Phrase))
	for k, tok := range longest.Phrase {
		isPrefixSlot := longest.EndsInPrefix && k == len(longest.Phrase)-1
		levels[k] = dedupTable[dedupKey{token: tok, isPrefixSlot: isPrefixSlot}]
	}

	lengthToIdx := make(map[int]int, len(cluster))
	for _, idx := range cluster {
		lengthToIdx[len(queries[idx].Phrase)] = idx
	}

	matches, err := s.phraseSet.MatchCombinationsAsWindows(levels, dPhrase, longest.EndsInPrefix)
	if err != nil {
		return newError(KindQueryShape, err, "fuzzy_match_multi composer walk")
	}

	for _, m := range matches {
		idx, ok := lengthToIdx[len(m.IDs)]
		if !ok {
			continue
		}
		q := queries[idx]
		var phrase []string
		if m.LastKind == phraseset.KindPrefix {
			phrase = s.reconstructWithPrefix(m.IDs, q.Phrase[len(q.Phrase)-1])
		} else {
			phrase = s.reconstructFull(m.IDs)
		}
		results[idx] = append(results[idx], FuzzyMatchResult{Phrase: phrase, EditDistance: m.Distance})
	}
	return nil
}

// resolveDedupTable resolves every distinct (token, is-prefix-slot) pair
// across queries exactly once, caching an empty result as an empty
// (non-nil-keyed) slice so a later lookup can distinguish "resolved to
// nothing" from "never attempted". Above concurrencyThreshold distinct
// keys, resolution is fanned out over a bounded worker pool, the same
// chunk/channel/WaitGroup shape the teacher's ParseList/InflectList use for
// batch word processing; the result is a plain merged map, so unlike
// ParseList there is no need for a final deterministic sort; map-keyed
// merge is already order-independent.
func (s *FuzzyPhraseSet) resolveDedupTable(queries []MultiQuery, dWord uint8) map[dedupKey][]phraseset.TokenVariant {
	seen := make(map[dedupKey]bool)
	var keys []dedupKey
	for _, q := range queries {
		for i, tok := range q.Phrase {
			key := dedupKey{token: tok, isPrefixSlot: q.EndsInPrefix && i == len(q.Phrase)-1}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	table := make(map[dedupKey][]phraseset.TokenVariant, len(keys))
	resolveOne := func(k dedupKey) []phraseset.TokenVariant {
		var v []phraseset.TokenVariant
		var ok bool
		if k.isPrefixSlot {
			v, ok = s.resolveTerminal(k.token, dWord)
		} else {
			v, ok = s.resolveNonterminal(k.token, dWord)
		}
		if !ok {
			return []phraseset.TokenVariant{}
		}
		return v
	}

	if len(keys) <= concurrencyThreshold {
		for _, k := range keys {
			table[k] = resolveOne(k)
		}
		return table
	}

	type chunkResult struct {
		key   dedupKey
		value []phraseset.TokenVariant
	}

	const chunkSize = 32
	numWorkers := runtime.NumCPU()
	chunksCh := make(chan []dedupKey, numWorkers)
	resultCh := make(chan []chunkResult, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for chunk := range chunksCh {
				out := make([]chunkResult, 0, len(chunk))
				for _, k := range chunk {
					out = append(out, chunkResult{key: k, value: resolveOne(k)})
				}
				resultCh <- out
			}
		}()
	}

	go func() {
		for i := 0; i < len(keys); i += chunkSize {
			end := i + chunkSize
			if end > len(keys) {
				end = len(keys)
			}
			chunksCh <- keys[i:end]
		}
		close(chunksCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for chunk := range resultCh {
		for _, r := range chunk {
			table[r.key] = r.value
		}
	}
	return table
}

// phraseLess orders phrases lexicographically by token, a shorter phrase
// that is a prefix of a longer one sorting first.
func phraseLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// isStrictPositionalPrefix reports whether a is a strict, positional
// prefix of b: every token of a equals the token at the same position in
// b, and a is shorter.
func isStrictPositionalPrefix(a, b []string) bool {
	if len(a) >= len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
