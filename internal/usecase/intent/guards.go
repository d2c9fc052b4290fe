package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/faroled/faro/internal/domain/text"
)

// GuardConfig carries the keyword sets and reply links for the terminal
// guards. Keywords are matched as substrings of the normalized message.
type GuardConfig struct {
	CatalogKeywords  []string
	QuoteKeywords    []string
	CompetitorBrands []string
	CatalogURL       string
	QuoteURL         string
}

// DefaultGuardConfig returns the production keyword sets. Competitor brands
// default empty: that guard only activates when configured.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		CatalogKeywords: []string{
			"catalogo", "catalogos", "portafolio", "portafolios",
			"brochure", "folleto", "catalogue",
		},
		QuoteKeywords: []string{
			"cotiz", "presupuesto", "presupuestar",
			"lista de precios", "precio unitario",
			"cuanto cuesta", "cuanto vale", "cuanto sale",
			"me regalas precio", "me das precio", "me pasas precio",
			"proforma", "oferta economica", "propuesta economica",
			"propuesta comercial", "quote", "quotation", "rfq",
		},
	}
}

// Decision is a terminal guard verdict: the canned reply to send and the
// intent label to record.
type Decision struct {
	Reply  string
	Intent string
}

// Guard inspects a normalized message and either produces a terminal
// decision or passes.
type Guard struct {
	Name  string
	Check func(norm string) (Decision, bool)
}

// Chain evaluates guards in order; the first terminal decision wins.
type Chain struct {
	guards []Guard
}

// NewChain builds the ordered guard chain: catalog link, quote request,
// competitor mention, abuse. Order matters: an explicit catalog ask beats a
// quote keyword appearing in the same message.
func NewChain(cfg GuardConfig) *Chain {
	base := DefaultGuardConfig()
	if len(cfg.CatalogKeywords) == 0 {
		cfg.CatalogKeywords = base.CatalogKeywords
	}
	if len(cfg.QuoteKeywords) == 0 {
		cfg.QuoteKeywords = base.QuoteKeywords
	}

	var guards []Guard
	guards = append(guards, catalogGuard(cfg), quoteGuard(cfg))
	if len(cfg.CompetitorBrands) > 0 {
		guards = append(guards, competitorGuard(cfg))
	}
	guards = append(guards, abuseGuard())
	return &Chain{guards: guards}
}

// Evaluate runs the chain over a raw message. Returns false when every guard
// passes and normal routing should continue.
func (c *Chain) Evaluate(message string) (Decision, bool) {
	norm := text.Normalize(message)
	for _, g := range c.guards {
		if d, hit := g.Check(norm); hit {
			return d, true
		}
	}
	return Decision{}, false
}

func containsAny(norm string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(norm, k) {
			return true
		}
	}
	return false
}

func catalogGuard(cfg GuardConfig) Guard {
	return Guard{
		Name: "catalog",
		Check: func(norm string) (Decision, bool) {
			if !containsAny(norm, cfg.CatalogKeywords) {
				return Decision{}, false
			}
			return Decision{
				Reply:  fmt.Sprintf("Puedes ver el catálogo y portafolio aquí: %s", cfg.CatalogURL),
				Intent: "catalog",
			}, true
		},
	}
}

func quoteGuard(cfg GuardConfig) Guard {
	return Guard{
		Name: "quote",
		Check: func(norm string) (Decision, bool) {
			if !containsAny(norm, cfg.QuoteKeywords) {
				return Decision{}, false
			}
			return Decision{
				Reply:  fmt.Sprintf("Para cotizaciones y presupuestos, escríbenos por [[a|WhatsApp|%s]]", cfg.QuoteURL),
				Intent: "quote",
			}, true
		},
	}
}

func competitorGuard(cfg GuardConfig) Guard {
	normalized := make([]string, 0, len(cfg.CompetitorBrands))
	for _, b := range cfg.CompetitorBrands {
		if n := text.Normalize(b); n != "" {
			normalized = append(normalized, n)
		}
	}
	return Guard{
		Name: "competitor",
		Check: func(norm string) (Decision, bool) {
			for _, b := range normalized {
				if containsWord(norm, b) {
					return Decision{
						Reply:  "Te asesoro con nuestro propio portafolio de iluminación. ¿Qué espacio quieres iluminar?",
						Intent: "competitor",
					}, true
				}
			}
			return Decision{}, false
		},
	}
}

var abuseRe = regexp.MustCompile(`\b(idiota|imbecil|estupid[oa]|tont[oa])\b`)

func abuseGuard() Guard {
	return Guard{
		Name: "abuse",
		Check: func(norm string) (Decision, bool) {
			if !abuseRe.MatchString(norm) {
				return Decision{}, false
			}
			return Decision{
				Reply:  "Sigamos con gusto cuando quieras hablar de iluminación. ¿Qué espacio necesitas iluminar?",
				Intent: "abuse",
			}, true
		},
	}
}

func containsWord(norm, word string) bool {
	idx := strings.Index(norm, word)
	for idx >= 0 {
		before := idx == 0 || norm[idx-1] == ' '
		after := idx+len(word) == len(norm) || norm[idx+len(word)] == ' '
		if before && after {
			return true
		}
		next := strings.Index(norm[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}
