package fuzzyphrase

import "github.com/Guo-astro/fuzzy-phrase/internal/phraseset"

// reconstructFull builds the []string phrase for a Match composed entirely
// of Full variants, looking every id up in the word list.
func (s *FuzzyPhraseSet) reconstructFull(ids []uint32) []string {
	phrase := make([]string, len(ids))
	for i, id := range ids {
		word, ok := s.resolveWord(id)
		if !ok {
			word = ""
		}
		phrase[i] = word
	}
	return phrase
}

// reconstructWithPrefix is reconstructFull, except the final slot's string
// comes from the caller's own input token (the phrase only matched it as a
// prefix, so the word list's string for that id would be a different,
// longer word).
func (s *FuzzyPhraseSet) reconstructWithPrefix(ids []uint32, lastInputToken string) []string {
	phrase := s.reconstructFull(ids)
	if len(phrase) > 0 {
		phrase[len(phrase)-1] = lastInputToken
	}
	return phrase
}

func toMatchResults(matches []phraseset.Match, reconstruct func(phraseset.Match) []string) []FuzzyMatchResult {
	if len(matches) == 0 {
		return nil
	}
	out := make([]FuzzyMatchResult, len(matches))
	for i, m := range matches {
		out[i] = FuzzyMatchResult{Phrase: reconstruct(m), EditDistance: m.Distance}
	}
	return out
}

// resolveAllNonterminal resolves every slot of phrase with
// resolveNonterminal, short-circuiting (spec.md §9's "lazy per-token
// resolution") as soon as any slot cannot be filled.
func (s *FuzzyPhraseSet) resolveAllNonterminal(phrase []string, dWord uint8) ([][]phraseset.TokenVariant, bool) {
	levels := make([][]phraseset.TokenVariant, len(phrase))
	for i, tok := range phrase {
		v, ok := s.resolveNonterminal(tok, dWord)
		if !ok {
			return nil, false
		}
		levels[i] = v
	}
	return levels, true
}

// FuzzyMatch resolves every slot of phrase with resolveNonterminal and
// returns every indexed phrase reachable within the per-word distance
// dWord and whole-phrase distance dPhrase. A slot that cannot be resolved
// at all yields an empty (not error) result.
func (s *FuzzyPhraseSet) FuzzyMatch(phrase []string, dWord, dPhrase uint8) ([]FuzzyMatchResult, error) {
	levels, ok := s.resolveAllNonterminal(phrase, dWord)
	if !ok {
		return nil, nil
	}
	matches, err := s.phraseSet.MatchCombinations(levels, dPhrase)
	if err != nil {
		return nil, newError(KindQueryShape, err, "fuzzy_match composer walk")
	}
	return toMatchResults(matches, func(m phraseset.Match) []string {
		return s.reconstructFull(m.IDs)
	}), nil
}

// FuzzyMatchStr is FuzzyMatch over a whitespace-split phrase string.
func (s *FuzzyPhraseSet) FuzzyMatchStr(phrase string, dWord, dPhrase uint8) ([]FuzzyMatchResult, error) {
	return s.FuzzyMatch(splitWhitespace(phrase), dWord, dPhrase)
}

// FuzzyMatchPrefix is FuzzyMatch, except the final slot uses
// resolveTerminal, allowing it to match as a genuine prefix of a longer
// token.
func (s *FuzzyPhraseSet) FuzzyMatchPrefix(phrase []string, dWord, dPhrase uint8) ([]FuzzyMatchResult, error) {
	if len(phrase) == 0 {
		return nil, nil
	}

	levels := make([][]phraseset.TokenVariant, len(phrase))
	for i := 0; i < len(phrase)-1; i++ {
		v, ok := s.resolveNonterminal(phrase[i], dWord)
		if !ok {
			return nil, nil
		}
		levels[i] = v
	}
	last := len(phrase) - 1
	v, ok := s.resolveTerminal(phrase[last], dWord)
	if !ok {
		return nil, nil
	}
	levels[last] = v

	matches, err := s.phraseSet.MatchCombinationsAsPrefixes(levels, dPhrase)
	if err != nil {
		return nil, newError(KindQueryShape, err, "fuzzy_match_prefix composer walk")
	}
	return toMatchResults(matches, func(m phraseset.Match) []string {
		if m.LastKind == phraseset.KindPrefix {
			return s.reconstructWithPrefix(m.IDs, phrase[last])
		}
		return s.reconstructFull(m.IDs)
	}), nil
}

// FuzzyMatchPrefixStr is FuzzyMatchPrefix over a whitespace-split phrase
// string.
func (s *FuzzyPhraseSet) FuzzyMatchPrefixStr(phrase string, dWord, dPhrase uint8) ([]FuzzyMatchResult, error) {
	return s.FuzzyMatchPrefix(splitWhitespace(phrase), dWord, dPhrase)
}

// Analyze is a convenience composition over Contains and FuzzyMatch,
// grounded on the teacher's own top-level Analyze(word) convenience
// (dictionary hit first, a fuzzy fallback second): it tries an exact
// Contains first and only falls back to FuzzyMatch on a miss. It adds no
// new semantics beyond the two operations it composes.
func (s *FuzzyPhraseSet) Analyze(phrase []string, dWord, dPhrase uint8) (exact bool, results []FuzzyMatchResult, err error) {
	ok, err := s.Contains(phrase)
	if err != nil {
		return false, nil, err
	}
	if ok {
		return true, []FuzzyMatchResult{{Phrase: append([]string(nil), phrase...), EditDistance: 0}}, nil
	}
	results, err = s.FuzzyMatch(phrase, dWord, dPhrase)
	return false, results, err
}
