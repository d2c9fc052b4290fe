// Package intent decides how a chat message is routed: smalltalk, in-scope
// product browsing or off-topic, plus the out-of-band detections layered
// before classification (catalog/quote/competitor/abuse guards, question
// detection, "show more" continuations, follow-up fragments).
package intent

import (
	"regexp"
	"strings"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain/text"
)

// Kind is the classification result for one message.
type Kind string

const (
	KindSmalltalk Kind = "smalltalk"
	KindInscope   Kind = "inscope"
	KindOfftopic  Kind = "offtopic"
)

// Params are the classifier's tunable cutoffs. The defaults were calibrated
// on real traffic; treat them as a starting point, not ground truth.
type Params struct {
	// CoverageThreshold is the minimum share of message tokens found in
	// the catalog vocabulary for an in-scope call.
	CoverageThreshold float64
	// SmalltalkMaxChars and SmalltalkMaxTokens bound how long an
	// unrecognized message can be and still pass as smalltalk.
	SmalltalkMaxChars  int
	SmalltalkMaxTokens int
	// SeedTerms extend the catalog vocabulary with domain terms that a
	// sparse feed may lack.
	SeedTerms []string
}

// DefaultParams returns the production classifier settings.
func DefaultParams() Params {
	return Params{
		CoverageThreshold:  0.25,
		SmalltalkMaxChars:  16,
		SmalltalkMaxTokens: 3,
		SeedTerms: []string{
			"led", "luminaria", "reflector", "panel", "cinta", "perfil",
			"downlight", "campana", "highbay", "aplique", "bombillo",
			"riel", "dicroico", "driver", "fotocelda", "poste",
		},
	}
}

var (
	smalltalkRe = regexp.MustCompile(`\b(hola|buen[oa]s|gracias|muchas gracias|adios|hasta luego|buen dia|buenas tardes|buenas noches|que tal|como estas)\b`)
	specTokenRe = regexp.MustCompile(`^\d+w$|^ip\d{2}$|^\d{4}k$`)
	moreRe      = regexp.MustCompile(`\b(mas|siguientes?|ver mas|otras?)\b`)
	followupRe  = regexp.MustCompile(`^(si|ok|vale|normal|blancas?|calida|fria|neutra)$`)
	questionRe  = regexp.MustCompile(`\b(que|cual|como|cuando|donde|por que|es mejor|mejor para|diferencia|sirve|funciona|compatible|se puede|conviene|recomienda|precio|garantia|flujo|voltaje|cri|apertura|optica|vida util|duracion|vs|versus)\b`)
)

// Classifier scores messages against the live catalog vocabulary. Stateless
// apart from its configuration.
type Classifier struct {
	params Params
	seed   map[string]bool
}

// NewClassifier builds a classifier. Empty SeedTerms fall back to the
// defaults.
func NewClassifier(params Params) *Classifier {
	if len(params.SeedTerms) == 0 {
		params.SeedTerms = DefaultParams().SeedTerms
	}
	seed := make(map[string]bool, len(params.SeedTerms))
	for _, t := range params.SeedTerms {
		for _, tok := range text.Tokens(t) {
			seed[tok] = true
		}
	}
	return &Classifier{params: params, seed: seed}
}

// Classify returns the intent kind for a message. cats and phr are the
// category and phrase signals already extracted for the message; either
// being non-empty forces an in-scope call regardless of coverage.
func (c *Classifier) Classify(snap *catalog.Snapshot, message string, cats, phr []string) Kind {
	m := strings.TrimSpace(message)
	norm := text.Normalize(m)
	toks := text.Tokens(m)
	if len(toks) == 0 {
		return KindSmalltalk
	}
	if smalltalkRe.MatchString(norm) {
		return KindSmalltalk
	}

	hits := 0
	for _, t := range toks {
		if c.inVocabulary(snap, t) || c.inVocabulary(snap, text.Singularize(t)) {
			hits++
		}
	}
	coverage := float64(hits) / float64(len(toks))
	if len(cats) > 0 || len(phr) > 0 || coverage >= c.params.CoverageThreshold {
		return KindInscope
	}

	if len(m) <= c.params.SmalltalkMaxChars || len(toks) <= c.params.SmalltalkMaxTokens {
		return KindSmalltalk
	}
	return KindOfftopic
}

func (c *Classifier) inVocabulary(snap *catalog.Snapshot, tok string) bool {
	if snap != nil && snap.Vocab[tok] {
		return true
	}
	return c.seed[tok] || specTokenRe.MatchString(tok)
}

// CatTokens returns the message tokens (or their singulars) present in the
// catalog's category/tag vocabulary, order preserved, first form wins.
// These become the hard filter tags.
func CatTokens(snap *catalog.Snapshot, message string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range text.Tokens(message) {
		for _, cand := range []string{t, text.Singularize(t)} {
			if snap.CatTags[cand] && !seen[cand] {
				seen[cand] = true
				out = append(out, cand)
			}
		}
	}
	return out
}

// PhraseTokens returns the message unigrams and bigrams present in the
// catalog's phrase vocabulary, bigrams first. These become the soft filter
// tokens.
func PhraseTokens(snap *catalog.Snapshot, message string) []string {
	toks := text.Tokens(message)
	seen := make(map[string]bool)

	var unis []string
	for _, t := range toks {
		for _, cand := range []string{t, text.Singularize(t)} {
			if snap.Phrases[cand] && !seen[cand] {
				seen[cand] = true
				unis = append(unis, cand)
			}
		}
	}

	singulars := make([]string, len(toks))
	for i, t := range toks {
		singulars[i] = text.Singularize(t)
	}
	var bis []string
	for _, bg := range append(text.Bigrams(singulars), text.Bigrams(toks)...) {
		if snap.Phrases[bg] && !seen[bg] {
			seen[bg] = true
			bis = append(bis, bg)
		}
	}

	return append(bis, unis...)
}

// WantsMore reports whether the message asks for the next page of the
// previous query.
func WantsMore(message string) bool {
	return moreRe.MatchString(text.Normalize(message))
}

// IsFollowUp reports whether the message is a one-word continuation fragment
// ("si", "calida") that should inherit the session's topic tokens.
func IsFollowUp(message string) bool {
	return followupRe.MatchString(text.Normalize(message))
}

// IsQuestion reports whether the message reads as a factual question, which
// routes to the FAQ path instead of retrieval.
func IsQuestion(message string) bool {
	m := strings.TrimSpace(message)
	if m == "" {
		return false
	}
	if strings.ContainsAny(m, "?¿") {
		return true
	}
	return questionRe.MatchString(text.Normalize(m))
}
