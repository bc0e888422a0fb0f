package unicodescript

import (
	"fmt"
	"regexp"
)

// Gate decides whether a token is eligible for fuzzy (edit-distance)
// matching: only tokens drawn entirely from a configured alphabetic script
// are fuzzy-eligible, so that numeric and CJK tokens are matched exactly
// instead of producing an explosion of spurious single-character-distance
// neighbors.
type Gate struct {
	re *regexp.Regexp
}

// New compiles a Gate from a list of script names. An unrecognized name
// produces an error rather than silently ignoring the script.
func New(scriptNames []string) (*Gate, error) {
	ranges := make([][]Range, 0, len(scriptNames))
	for _, name := range scriptNames {
		r, ok := GetScriptByName(name)
		if !ok {
			return nil, fmt.Errorf("unicodescript: unknown script %q", name)
		}
		ranges = append(ranges, r)
	}
	re, err := regexp.Compile(GetPatternForScripts(ranges))
	if err != nil {
		return nil, fmt.Errorf("unicodescript: compiling script pattern: %w", err)
	}
	return &Gate{re: re}, nil
}

// CanFuzzyMatch reports whether every code point in token belongs to one of
// the gate's configured scripts.
func (g *Gate) CanFuzzyMatch(token string) bool {
	return g.re.MatchString(token)
}
