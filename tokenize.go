package fuzzyphrase

import "strings"

// splitWhitespace splits s on single ASCII spaces. It is a convenience for
// callers working with simple space-joined phrases, not a tokenizer: it
// does no Unicode-aware word breaking, punctuation handling, or
// normalization. Every other entry point accepts pre-tokenized []string
// phrases directly.
func splitWhitespace(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}
