package fuzzyphrase

import "github.com/Guo-astro/fuzzy-phrase/internal/phraseset"

// FuzzyMatchWindows segments tokens at every slot that cannot be resolved
// at all, then for every maximal run of resolved slots (a "segment") and
// every start offset within it, walks the phrase automaton over the tail
// from that offset to the segment's end. Unmatched slots act as barriers:
// a returned window is always a contiguous slice of tokens, never
// spanning a gap. ends_in_prefix only takes effect for the walk whose tail
// reaches the true end of the input (spec.md §4.6).
func (s *FuzzyPhraseSet) FuzzyMatchWindows(tokens []string, dWord, dPhrase uint8, endsInPrefix bool) ([]FuzzyWindowResult, error) {
	n := len(tokens)
	if n == 0 {
		return nil, nil
	}

	levels := make([][]phraseset.TokenVariant, n)
	resolved := make([]bool, n)
	for i, tok := range tokens {
		var v []phraseset.TokenVariant
		var ok bool
		if i == n-1 && endsInPrefix {
			v, ok = s.resolveTerminal(tok, dWord)
		} else {
			v, ok = s.resolveNonterminal(tok, dWord)
		}
		levels[i] = v
		resolved[i] = ok
	}

	var results []FuzzyWindowResult
	s_ := 0
	for s_ < n {
		if !resolved[s_] {
			s_++
			continue
		}
		e := s_
		for e < n && resolved[e] {
			e++
		}
		// Segment covers tokens[s_:e].
		endsInPrefixForWalk := endsInPrefix && e == n
		for i := s_; i < e; i++ {
			matches, err := s.phraseSet.MatchCombinationsAsWindows(levels[i:e], dPhrase, endsInPrefixForWalk)
			if err != nil {
				return nil, newError(KindQueryShape, err, "fuzzy_match_windows composer walk")
			}
			for _, m := range matches {
				var phrase []string
				if m.LastKind == phraseset.KindPrefix {
					phrase = s.reconstructWithPrefix(m.IDs, tokens[e-1])
				} else {
					phrase = s.reconstructFull(m.IDs)
				}
				results = append(results, FuzzyWindowResult{
					Phrase:        phrase,
					EditDistance:  m.Distance,
					StartPosition: i,
					EndsInPrefix:  m.AcceptsAsPrefix,
				})
			}
		}
		s_ = e
	}

	return results, nil
}
