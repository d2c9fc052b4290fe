package text

import "strings"

// Irregular plurals seen in the catalog that the suffix rules miss.
var singularExceptions = map[string]string{
	"leds": "led",
}

// Singularize reduces a Spanish plural token to its singular form using
// conservative suffix rules. Ambiguous cases fall through unchanged: merging
// two distinct catalog terms is worse than leaving a plural unreduced.
//
//	luces       -> luz     (ces -> z)
//	paneles     -> panel   (es dropped when the stem ends in l/r/n/d/z)
//	reflectores -> reflector
//	postes      -> poste   (vowel + s, never "post")
//	leds        -> led     (exception table)
//	gas         -> gas     (too short, unchanged)
func Singularize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))

	if s, ok := singularExceptions[t]; ok {
		return s
	}

	// Short tokens are left alone to avoid over-stemming.
	if len(t) <= 4 {
		return t
	}

	if strings.HasSuffix(t, "ces") {
		return t[:len(t)-3] + "z"
	}

	if strings.HasSuffix(t, "es") {
		stem := t[:len(t)-2]
		switch stem[len(stem)-1] {
		case 'l', 'r', 'n', 'd', 'z':
			return stem
		}
		// Not a consonant plural; the vowel+s rule below may still apply.
	}

	if strings.HasSuffix(t, "s") && isVowel(t[len(t)-2]) {
		return t[:len(t)-1]
	}

	return t
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
