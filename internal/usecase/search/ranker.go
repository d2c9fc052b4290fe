// Package search ranks catalog rows against a free-text query and slices the
// ranked pool into filtered, deduplicated pages.
package search

import (
	"sort"
	"strings"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain/similarity"
	"github.com/faroled/faro/internal/domain/text"
)

// Params are the tunable ranking constants. Values come from configuration;
// DefaultParams matches the calibrated production settings.
type Params struct {
	PageSize        int
	OverfetchFactor int
	// RequiredDFRatio splits query terms: terms present in at most this
	// share of the catalog gate results, more common terms only score.
	RequiredDFRatio float64
	// AcceptSim is the per-term similarity bar counting as a term match.
	AcceptSim float64

	NameWeight        float64
	TagsWeight        float64
	CategoryWeight    float64
	DescriptionWeight float64
}

// DefaultParams returns the production ranking constants.
func DefaultParams() Params {
	return Params{
		PageSize:          5,
		OverfetchFactor:   5,
		RequiredDFRatio:   0.60,
		AcceptSim:         0.72,
		NameWeight:        1.0,
		TagsWeight:        0.85,
		CategoryWeight:    0.65,
		DescriptionWeight: 0.35,
	}
}

const (
	substringBonus    = 0.15
	digitTermBonus    = 0.25
	matchedTermsBonus = 0.2
)

// Service scores and pages catalog rows. Stateless; safe for concurrent use.
type Service struct {
	params Params
}

// New creates a search service with the given ranking parameters.
func New(params Params) *Service {
	return &Service{params: params}
}

// PageSize returns the configured page size.
func (s *Service) PageSize() int { return s.params.PageSize }

// Candidates ranks every catalog row against the query and returns the top
// limit × overfetch rows, score descending with alphabetical name
// tie-break. Low-document-frequency query terms are required: a row whose
// blob lacks one is excluded outright. When no query term is in the catalog
// vocabulary the ranking falls back to ungated fuzzy scoring so typo-only
// queries still recall.
func (s *Service) Candidates(snap *catalog.Snapshot, query string, limit int) []catalog.Row {
	terms := text.ExpandQuery(query)
	if len(terms) == 0 || snap == nil || len(snap.Rows) == 0 {
		return nil
	}

	var inVocab []string
	for _, t := range terms {
		if snap.Vocab[t] {
			inVocab = append(inVocab, t)
		}
	}

	scoringTerms := inVocab
	var required []string
	if len(inVocab) == 0 {
		scoringTerms = terms
	} else {
		for _, t := range inVocab {
			ratio := float64(snap.DocFreq[t]) / float64(snap.DocCount)
			if ratio <= s.params.RequiredDFRatio {
				required = append(required, t)
			}
		}
	}

	type scored struct {
		row   catalog.Row
		score float64
	}
	var pool []scored

rows:
	for _, row := range snap.Rows {
		for _, req := range required {
			if !strings.Contains(row.Blob, req) {
				continue rows
			}
		}
		if score := s.scoreRow(row, scoringTerms); score > 0 {
			pool = append(pool, scored{row: row, score: score})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return pool[i].row.Name < pool[j].row.Name
	})

	max := limit * s.params.OverfetchFactor
	if max > 0 && len(pool) > max {
		pool = pool[:max]
	}
	out := make([]catalog.Row, len(pool))
	for i, p := range pool {
		out[i] = p.row
	}
	return out
}

func (s *Service) scoreRow(row catalog.Row, terms []string) float64 {
	var score float64
	matched := 0
	for _, term := range terms {
		simName := bestSim(term, row.NameTokens)
		simTags := bestSim(term, row.TagTokens)
		simCat := bestSim(term, row.CatTokens)
		simDesc := bestSim(term, row.DescTokens)

		score += s.params.NameWeight*simName +
			s.params.TagsWeight*simTags +
			s.params.CategoryWeight*simCat +
			s.params.DescriptionWeight*simDesc

		if strings.Contains(row.Blob, term) {
			score += substringBonus
			if hasDigit(term) {
				score += digitTermBonus
			}
		}

		best := simName
		for _, v := range []float64{simTags, simCat, simDesc} {
			if v > best {
				best = v
			}
		}
		if best >= s.params.AcceptSim {
			matched++
		}
	}
	return score + matchedTermsBonus*float64(matched)
}

func bestSim(term string, tokens []string) float64 {
	var best float64
	for _, tok := range tokens {
		if sim := similarity.JaroWinkler(term, tok); sim > best {
			best = sim
			if best == 1 {
				break
			}
		}
	}
	return best
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
