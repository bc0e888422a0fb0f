package fuzzyphrase

import (
	"github.com/Guo-astro/fuzzy-phrase/internal/phraseset"
)

// clampWord lowers dWord to the fuzzy map's build-time maximum, exactly as
// spec.md §4.2 requires ("values above that are silently lowered").
func (s *FuzzyPhraseSet) clampWord(dWord uint8) uint8 {
	if max := s.fuzzyMap.MaxDistance(); dWord > max {
		return max
	}
	return dWord
}

// resolveNonterminal resolves a single mid-phrase (or whole-phrase, for a
// non-prefix query) token into its candidate variants. ok is false when the
// slot cannot be filled at all, in which case the caller must short-circuit
// the enclosing query to an empty result.
func (s *FuzzyPhraseSet) resolveNonterminal(token string, dWord uint8) ([]phraseset.TokenVariant, bool) {
	dWord = s.clampWord(dWord)

	if s.scriptGate.CanFuzzyMatch(token) {
		hits := s.fuzzyMap.Lookup(token, dWord, s.resolveWord)
		if len(hits) == 0 {
			return nil, false
		}
		variants := make([]phraseset.TokenVariant, len(hits))
		for i, h := range hits {
			variants[i] = phraseset.TokenVariant{Kind: phraseset.KindFull, ID: h.ID, EditDistance: h.EditDistance}
		}
		return variants, true
	}

	id, ok := s.prefixSet.Get(token)
	if !ok {
		return nil, false
	}
	return []phraseset.TokenVariant{{Kind: phraseset.KindFull, ID: id, EditDistance: 0}}, true
}

// resolveTerminal resolves the last slot of a prefix-ending query: the
// token may complete as a genuine prefix (matching a range of token ids),
// as a fuzzy hit, or both.
func (s *FuzzyPhraseSet) resolveTerminal(token string, dWord uint8) ([]phraseset.TokenVariant, bool) {
	dWord = s.clampWord(dWord)

	var variants []phraseset.TokenVariant
	hasPrefix := false

	if lo, hi, ok := s.prefixSet.GetPrefixRange(token); ok {
		variants = append(variants, phraseset.TokenVariant{Kind: phraseset.KindPrefix, RangeLo: lo, RangeHi: hi})
		hasPrefix = true
	}

	if s.scriptGate.CanFuzzyMatch(token) {
		hits := s.fuzzyMap.Lookup(token, dWord, s.resolveWord)
		for _, h := range hits {
			if hasPrefix && h.EditDistance == 0 {
				// The prefix range already contains this exact id.
				continue
			}
			variants = append(variants, phraseset.TokenVariant{Kind: phraseset.KindFull, ID: h.ID, EditDistance: h.EditDistance})
		}
	}

	if len(variants) == 0 {
		return nil, false
	}
	return variants, true
}
