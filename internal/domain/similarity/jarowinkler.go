// Package similarity implements the string-similarity measures used for fuzzy
// token matching: Jaro-Winkler for scoring and a named soft-match strategy for
// filtering.
package similarity

// Jaro returns the Jaro similarity of two strings in [0,1]. Identical strings
// score 1.0, an empty operand scores 0.0. Matching characters are searched
// within a window of floor(max(len)/2)-1 around each position.
func Jaro(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	window := max(la, lb)/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for j := lo; j < hi; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Half-transpositions: matched characters out of order.
	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions / 2) // floored, so an odd mismatch count rounds down
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3
}

const (
	winklerScale     = 0.1
	winklerMaxPrefix = 4
)

// JaroWinkler boosts the Jaro similarity for strings sharing a common prefix,
// capped at four characters with scale 0.1.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)
	if j == 0 {
		return 0
	}

	prefix := 0
	for prefix < len(a) && prefix < len(b) && prefix < winklerMaxPrefix {
		if a[prefix] != b[prefix] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*winklerScale*(1-j)
}
