package catalog

import (
	"strings"

	"github.com/faroled/faro/internal/domain/text"
)

// indexCodes registers a product's code identifiers and their lookup
// variants: the code itself, the code with hyphens stripped, and the base
// prefix before the first hyphen when it still looks code-like. First
// product wins on collisions, matching feed order.
func indexCodes(codes map[string]int, ids []string, rowIdx int) {
	put := func(c string) {
		if len(c) < 3 {
			return
		}
		if _, taken := codes[c]; !taken {
			codes[c] = rowIdx
		}
	}
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		put(id)
		if stripped := strings.ReplaceAll(id, "-", ""); stripped != id {
			put(stripped)
		}
		if base, _, found := strings.Cut(id, "-"); found && hasDigit(base) {
			put(base)
		}
	}
}

// FindCode scans a raw message for product-code tokens and returns the
// matching row. When several candidates hit, the longest code wins (the most
// specific reference). Second return is false when nothing matches.
func (s *Snapshot) FindCode(message string) (Row, bool) {
	best := -1
	bestLen := 0
	for _, cand := range text.CodeCandidates(message) {
		variants := []string{cand, strings.ReplaceAll(cand, "-", "")}
		for _, v := range variants {
			idx, ok := s.codes[v]
			if ok && len(v) > bestLen {
				best = idx
				bestLen = len(v)
			}
		}
	}
	if best < 0 {
		return Row{}, false
	}
	return s.Rows[best], true
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
