// Package catalog loads the product feed and builds the immutable in-memory
// index the retriever, the filter pipeline and the intent classifier read:
// per-product token lists, a document-frequency table, category/tag and
// phrase vocabularies and a product-code index.
package catalog

import (
	"strings"

	"github.com/faroled/faro/internal/domain/product"
	"github.com/faroled/faro/internal/domain/text"
)

const minVocabTokenLen = 3

// Row is the indexed form of one product.
type Row struct {
	Product product.Product
	Key     string

	// Normalized field strings and their concatenation for substring tests.
	Name        string
	Category    string
	Tags        string
	Description string
	Blob        string

	// Token lists per field, originals followed by singulars, first seen wins.
	NameTokens []string
	CatTokens  []string
	TagTokens  []string
	DescTokens []string

	// CatTag is the singularization-aware category+tag token set used by the
	// hard filter.
	CatTag map[string]bool
	// BlobTokens is the union of all field tokens, used by the soft filter.
	BlobTokens map[string]bool
}

// Snapshot is one immutable build of the catalog index. Readers share it
// without locking; the cache swaps in a new one when the feed changes.
type Snapshot struct {
	Rows     []Row
	DocCount int

	// Vocab holds every catalog token of length >= 3.
	Vocab map[string]bool
	// DocFreq counts distinct products containing each token.
	DocFreq map[string]int
	// CatTags is the category/tag vocabulary used to pick hard filter tokens
	// out of a message.
	CatTags map[string]bool
	// Phrases holds name unigrams and bigrams for soft-filter token picking.
	Phrases map[string]bool

	codes map[string]int
	hash  string
}

// Hash identifies the feed content this snapshot was built from.
func (s *Snapshot) Hash() string { return s.hash }

// Build indexes a product list. Malformed rows were already dropped by the
// source; a row with no text at all still indexes (with empty token lists)
// so counts stay honest.
func Build(products []product.Product, hash string) *Snapshot {
	snap := &Snapshot{
		Rows:    make([]Row, 0, len(products)),
		Vocab:   make(map[string]bool),
		DocFreq: make(map[string]int),
		CatTags: make(map[string]bool),
		Phrases: make(map[string]bool),
		codes:   make(map[string]int),
		hash:    hash,
	}

	for _, p := range products {
		row := buildRow(p)
		idx := len(snap.Rows)
		snap.Rows = append(snap.Rows, row)
		snap.DocCount++

		docTokens := make(map[string]bool)
		for _, list := range [][]string{row.NameTokens, row.CatTokens, row.TagTokens, row.DescTokens} {
			for _, tok := range list {
				if len(tok) >= minVocabTokenLen {
					snap.Vocab[tok] = true
					docTokens[tok] = true
				}
			}
		}
		for tok := range docTokens {
			snap.DocFreq[tok]++
		}

		for tok := range row.CatTag {
			if len(tok) >= minVocabTokenLen {
				snap.CatTags[tok] = true
			}
		}

		nameToks := text.Tokens(row.Name)
		for _, tok := range nameToks {
			if len(tok) >= minVocabTokenLen {
				snap.Phrases[tok] = true
			}
		}
		for _, bg := range text.Bigrams(nameToks) {
			if len(bg) >= 6 {
				snap.Phrases[bg] = true
			}
		}

		indexCodes(snap.codes, p.Codes(), idx)
	}

	return snap
}

func buildRow(p product.Product) Row {
	name := text.Normalize(p.Name())
	category := text.Normalize(strings.Join(p.Categories(), " "))
	tags := text.Normalize(strings.Join(p.Tags(), " "))
	desc := text.Normalize(p.Description())

	row := Row{
		Product:     p,
		Key:         p.Key(),
		Name:        name,
		Category:    category,
		Tags:        tags,
		Description: desc,
		Blob:        strings.TrimSpace(name + " " + category + " " + tags + " " + desc),
		NameTokens:  text.ExpandQuery(name),
		CatTokens:   text.ExpandQuery(category),
		TagTokens:   text.ExpandQuery(tags),
		DescTokens:  text.ExpandQuery(desc),
		CatTag:      make(map[string]bool),
		BlobTokens:  make(map[string]bool),
	}

	for _, tok := range row.CatTokens {
		row.CatTag[tok] = true
	}
	for _, tok := range row.TagTokens {
		row.CatTag[tok] = true
	}
	for _, list := range [][]string{row.NameTokens, row.CatTokens, row.TagTokens, row.DescTokens} {
		for _, tok := range list {
			row.BlobTokens[tok] = true
		}
	}

	return row
}
