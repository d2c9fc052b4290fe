package similarity

import "strings"

const (
	softMinLen  = 4
	softRatio   = 0.80
	softOverlap = 0.80
)

// SoftMatch reports whether a query token tolerantly matches a catalog token.
// Three sub-rules, checked in order, any hit matches:
//
//  1. exact equality
//  2. sequence similarity ≥0.80 when both tokens are at least 4 characters
//  3. containment with overlap ratio ≥0.80 (shorter over longer length)
//
// The rules accept minor spelling variation ("exterior"/"exteriores") without
// pulling in unrelated vocabulary; anything looser belongs to the ranker.
func SoftMatch(query, token string) bool {
	if query == "" || token == "" {
		return false
	}
	if query == token {
		return true
	}
	if len(query) >= softMinLen && len(token) >= softMinLen &&
		SequenceRatio(query, token) >= softRatio {
		return true
	}
	return containmentOverlap(query, token) >= softOverlap
}

func containmentOverlap(a, b string) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if !strings.Contains(long, short) {
		return 0
	}
	return float64(len(short)) / float64(len(long))
}

// SequenceRatio is the Ratcliff-Obershelp similarity: twice the total matched
// characters over the combined length, matches found by recursively taking
// the longest common substring.
func SequenceRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	m := matchedChars(a, b)
	return 2 * float64(m) / float64(la+lb)
}

func matchedChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedChars(a[:ai], b[:bi])
	total += matchedChars(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	// One-row DP over byte positions; tokens are short normalized ASCII.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
