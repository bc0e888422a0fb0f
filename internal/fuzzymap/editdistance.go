package fuzzymap

// damerauLevenshtein computes the restricted (optimal string alignment)
// edit distance between a and b: insertions, deletions, substitutions, and
// transpositions of adjacent characters, each applied at most once per
// position. Grounded on the three-row prev2/prev/curr SymSpell
// implementation in the example corpus, generalized only in that this
// module's callers always cap maxDist at 1.
func damerauLevenshtein(a, b []rune, maxDist int) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > maxDist {
		return diff
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}

			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				trans := prev2[j-2] + cost
				if trans < best {
					best = trans
				}
			}

			curr[j] = best
		}

		prev2, prev, curr = prev, curr, prev2
	}

	return prev[lb]
}
