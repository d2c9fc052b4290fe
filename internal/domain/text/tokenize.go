package text

import (
	"regexp"
	"strings"
)

// Spec patterns written with a space between number and unit ("100 w",
// "ip 65", "4000 k") are squeezed into the single-token form the catalog
// uses, so wattage, ingress-rating and color-temperature queries line up.
var (
	wattRe   = regexp.MustCompile(`\b(\d+)\s+w\b`)
	ipRe     = regexp.MustCompile(`\bip\s+(\d{2})\b`)
	kelvinRe = regexp.MustCompile(`\b(\d{4})\s+k\b`)

	codeCandidateRe = regexp.MustCompile(`[a-z0-9-]{3,}`)
	digitRe         = regexp.MustCompile(`\d`)
)

func squeezeSpecTokens(s string) string {
	s = wattRe.ReplaceAllString(s, "${1}w")
	s = ipRe.ReplaceAllString(s, "ip${1}")
	s = kelvinRe.ReplaceAllString(s, "${1}k")
	return s
}

// Tokens normalizes a string and splits it into word tokens, with spec
// patterns squeezed first.
func Tokens(s string) []string {
	n := squeezeSpecTokens(Normalize(s))
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}

// ExpandQuery turns a raw query into an ordered list of unique search terms:
// each token followed by its singular form when that differs, first
// occurrence wins. No synonym or similarity expansion.
func ExpandQuery(q string) []string {
	toks := Tokens(q)
	if len(toks) == 0 {
		return nil
	}

	terms := make([]string, 0, len(toks)*2)
	seen := make(map[string]bool, len(toks)*2)
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	for _, t := range toks {
		add(t)
		if s := Singularize(t); s != t {
			add(s)
		}
	}
	return terms
}

// Bigrams joins adjacent token pairs with a space. Used to enrich the phrase
// vocabulary with two-word category names ("luz calida", "panel solar").
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// CodeCandidates extracts tokens that look like product codes: alphanumeric
// runs of at least three characters containing a digit. Hyphens survive
// normalization loss by scanning the raw lowercased message, so "RF-100"
// stays a single candidate.
func CodeCandidates(raw string) []string {
	s := strings.ToLower(raw)
	var out []string
	seen := make(map[string]bool)
	for _, m := range codeCandidateRe.FindAllString(s, -1) {
		m = strings.Trim(m, "-")
		if len(m) < 3 || !digitRe.MatchString(m) || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
