// Package text provides the lexical primitives shared by the catalog index,
// the retriever and the intent classifier: accent-stripping normalization,
// conservative Spanish singularization and query tokenization.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowers a string to plain ASCII search form: Unicode NFKD
// decomposition with combining marks stripped, everything outside [a-z0-9]
// replaced by a single space, whitespace collapsed and trimmed.
// Total and idempotent: never fails, empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// A transform.Transformer carries state, so build the chain per call.
	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(stripper, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
