package taxonomy

import "strings"

// Similar reports whether two strings are fuzzy-equal at the given
// threshold on a 0-100 scale. Comparison is case-insensitive.
func Similar(a, b string, threshold int) bool {
	return Ratio(a, b) >= threshold
}

// Ratio computes a normalized edit-distance similarity between two
// strings: 100*(1 - distance/(len(a)+len(b))) with unit-cost insertions
// and deletions. Identical strings score 100, disjoint strings 0.
func Ratio(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist := indelDistance(ra, rb)
	return int(float64(total-dist) / float64(total) * 100)
}

// indelDistance is the insert/delete edit distance (no substitutions),
// computed with a rolling single-row DP.
func indelDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				del := prev[j] + 1
				ins := curr[j-1] + 1
				if del < ins {
					curr[j] = del
				} else {
					curr[j] = ins
				}
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
