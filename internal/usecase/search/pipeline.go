package search

import (
	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/domain/similarity"
	"github.com/faroled/faro/internal/domain/text"
)

// PageQuery carries the filter and pagination inputs for one page request.
type PageQuery struct {
	// HardTags must ALL be present in a row's category/tag token set.
	// An unmatched hard tag empties the result rather than widening it.
	HardTags []string
	// SoftTokens prefer rows where any token soft-matches a blob token.
	// A soft filter never empties a non-empty result.
	SoftTokens []string
	// Exclude holds product keys already shown; non-empty marks a "show
	// more" continuation.
	Exclude map[string]bool
	// Page is the zero-indexed page for fresh queries. Ignored when
	// Exclude is active: continuations always resume at the head of what
	// remains.
	Page int
}

// Page filters the ranked candidate pool, deduplicates it by product key and
// returns one page plus whether more results remain. Pure function of its
// inputs.
func (s *Service) Page(pool []catalog.Row, q PageQuery) (items []catalog.Row, hasMore bool) {
	filtered := hardFilter(pool, q.HardTags)
	filtered = softFilter(filtered, q.SoftTokens)

	unique := make([]catalog.Row, 0, len(filtered))
	seen := make(map[string]bool, len(filtered))
	for _, row := range filtered {
		if seen[row.Key] || q.Exclude[row.Key] {
			continue
		}
		seen[row.Key] = true
		unique = append(unique, row)
	}

	size := s.params.PageSize
	if len(q.Exclude) > 0 {
		if len(unique) > size {
			return unique[:size], true
		}
		return unique, false
	}

	offset := q.Page * size
	if offset >= len(unique) {
		return nil, false
	}
	end := offset + size
	if end > len(unique) {
		end = len(unique)
	}
	return unique[offset:end], len(unique) > offset+size
}

func hardFilter(rows []catalog.Row, tags []string) []catalog.Row {
	if len(tags) == 0 {
		return rows
	}
	out := make([]catalog.Row, 0, len(rows))
rows:
	for _, row := range rows {
		for _, tag := range tags {
			if !row.CatTag[tag] && !row.CatTag[text.Singularize(tag)] {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}

func softFilter(rows []catalog.Row, tokens []string) []catalog.Row {
	if len(tokens) == 0 || len(rows) == 0 {
		return rows
	}
	out := make([]catalog.Row, 0, len(rows))
	for _, row := range rows {
		if softHit(row, tokens) {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return rows
	}
	return out
}

func softHit(row catalog.Row, tokens []string) bool {
	for _, tok := range tokens {
		for blobTok := range row.BlobTokens {
			if similarity.SoftMatch(tok, blobTok) {
				return true
			}
		}
	}
	return false
}
