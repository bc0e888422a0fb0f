// Package unicodescript carries the small, fixed set of Unicode script
// code-point ranges this index cares about. Unlike the stdlib unicode
// package's Scripts table, these ranges are owned by this module: they are
// exactly the scripts named in the metadata descriptor, no more and no less.
package unicodescript

import "fmt"

// Range is an inclusive code-point interval.
type Range struct {
	Lo, Hi rune
}

// Latin covers Basic Latin letters, Latin-1 Supplement letters, and Latin
// Extended-A/B, which is enough to cover accented Western European address
// and name text without pulling in symbols or digits.
var Latin = []Range{
	{0x0041, 0x005A}, // A-Z
	{0x0061, 0x007A}, // a-z
	{0x00AA, 0x00AA}, // feminine ordinal indicator (letter-like)
	{0x00B5, 0x00B5}, // micro sign (letter-like)
	{0x00BA, 0x00BA}, // masculine ordinal indicator
	{0x00C0, 0x00D6},
	{0x00D8, 0x00F6}, // excludes ×(00D7)
	{0x00F8, 0x00FF}, // excludes ÷(00F7)
	{0x0100, 0x017F}, // Latin Extended-A
	{0x0180, 0x024F}, // Latin Extended-B
}

// Greek covers the Greek and Coptic block plus Greek Extended.
var Greek = []Range{
	{0x0370, 0x0373},
	{0x0375, 0x0377},
	{0x037A, 0x037D},
	{0x037F, 0x037F},
	{0x0384, 0x0384},
	{0x0386, 0x0386},
	{0x0388, 0x038A},
	{0x038C, 0x038C},
	{0x038E, 0x03A1},
	{0x03A3, 0x03E1},
	{0x03F0, 0x03FF},
	{0x1F00, 0x1FFF},
}

// Cyrillic covers the Cyrillic block plus the Cyrillic Supplement.
var Cyrillic = []Range{
	{0x0400, 0x0484},
	{0x0487, 0x052F},
}

// byName maps a spec-recognized script name to its range table.
var byName = map[string][]Range{
	"Latin":    Latin,
	"Greek":    Greek,
	"Cyrillic": Cyrillic,
}

// GetScriptByName looks up a configured script's ranges by name. It returns
// false for any name not in the fixed set this module recognizes, which the
// caller surfaces as an InvalidData error (spec.md §7: "unknown configured
// script").
func GetScriptByName(name string) ([]Range, bool) {
	r, ok := byName[name]
	return r, ok
}

// GetPatternForScripts builds a regular expression, anchored to match an
// entire string, that accepts exactly the strings composed of code points
// drawn from the union of the given scripts' ranges.
func GetPatternForScripts(scripts [][]Range) string {
	pattern := "^["
	for _, ranges := range scripts {
		for _, r := range ranges {
			if r.Lo == r.Hi {
				pattern += fmt.Sprintf(`\x{%04X}`, r.Lo)
			} else {
				pattern += fmt.Sprintf(`\x{%04X}-\x{%04X}`, r.Lo, r.Hi)
			}
		}
	}
	pattern += "]+$"
	return pattern
}
