package fuzzyphrase

// FuzzyMatchResult is one phrase found by a fuzzy query: the phrase itself
// (reconstructed from the word list for an exactly-matched token, or from
// the caller's own input string at a prefix slot) and the total
// accumulated edit distance across all slots.
type FuzzyMatchResult struct {
	Phrase       []string
	EditDistance uint8
}

// FuzzyWindowResult is a FuzzyMatchResult located within a longer input
// token sequence: the offset the matched window started at, and whether
// it was accepted only because it is a valid prefix of some longer phrase
// (as opposed to being a complete, indexed phrase itself).
type FuzzyWindowResult struct {
	Phrase        []string
	EditDistance  uint8
	StartPosition int
	EndsInPrefix  bool
}
