// Package product models a catalog entry as loaded from the product feed.
// Feeds differ in field naming (Spanish and English aliases, singular and
// plural), so a Product keeps the raw record and resolves fields through
// alias lists at read time.
package product

import (
	"fmt"
	"strings"

	"github.com/faroled/faro/internal/domain/text"
)

// Product is a read-only catalog record. The zero value is an empty product.
type Product struct {
	raw map[string]any
}

// FromMap wraps a decoded feed record. Non-map feed rows are rejected by the
// loader before this is called.
func FromMap(raw map[string]any) Product {
	return Product{raw: raw}
}

// Raw exposes the underlying record for debug output.
func (p Product) Raw() map[string]any { return p.raw }

var (
	nameAliases  = []string{"name", "nombre", "title", "titulo"}
	catAliases   = []string{"category", "categoria", "categorias", "categories"}
	tagAliases   = []string{"tags", "etiquetas"}
	descAliases  = []string{"description", "descripcion"}
	codeAliases  = []string{"sku", "code", "codigo", "id", "ref"}
	priceAliases = []string{"price", "precio", "valor"}
	imageAliases = []string{"image", "img_url", "image_url", "img", "thumbnail", "thumb"}
	urlAliases   = []string{"url", "link", "href"}
	keyAliases   = []string{"sku", "code", "id", "link", "url"}
)

// Name returns the display name, empty when the record carries none.
func (p Product) Name() string { return p.firstString(nameAliases) }

// Categories returns the category values. A scalar category field yields a
// single-element slice.
func (p Product) Categories() []string { return p.stringList(catAliases) }

// Tags returns the tag values.
func (p Product) Tags() []string { return p.stringList(tagAliases) }

// Description returns the free-text description.
func (p Product) Description() string { return p.firstString(descAliases) }

// Price returns the price field as loaded, stringified.
func (p Product) Price() string { return p.firstString(priceAliases) }

// Image returns the first image URL alias present.
func (p Product) Image() string { return p.firstString(imageAliases) }

// URL returns the product page link.
func (p Product) URL() string { return p.firstString(urlAliases) }

// Codes returns every code-like identifier on the record (sku, code, id, ref),
// lowercased. Used by the product-code index.
func (p Product) Codes() []string {
	var out []string
	for _, k := range codeAliases {
		if v := p.stringValue(p.raw[k]); v != "" {
			out = append(out, strings.ToLower(v))
		}
	}
	return out
}

// Key is the dedup identity: first non-empty of sku, code, id, link, url,
// else the normalized name.
func (p Product) Key() string {
	for _, k := range keyAliases {
		if v := p.stringValue(p.raw[k]); v != "" {
			return v
		}
	}
	return text.Normalize(p.Name())
}

// Display is the wire representation of a product in chat responses.
type Display struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    string   `json:"price,omitempty"`
	Image    string   `json:"image,omitempty"`
	URL      string   `json:"url,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ToDisplay packs a product for the API response.
func (p Product) ToDisplay() Display {
	cat := ""
	if cats := p.Categories(); len(cats) > 0 {
		cat = cats[0]
	}
	return Display{
		ID:       p.Key(),
		Title:    p.Name(),
		Price:    p.Price(),
		Image:    p.Image(),
		URL:      p.URL(),
		Category: cat,
		Tags:     p.Tags(),
	}
}

func (p Product) firstString(aliases []string) string {
	for _, k := range aliases {
		if v := p.stringValue(p.raw[k]); v != "" {
			return v
		}
	}
	return ""
}

func (p Product) stringList(aliases []string) []string {
	for _, k := range aliases {
		switch v := p.raw[k].(type) {
		case nil:
			continue
		case []any:
			var out []string
			for _, e := range v {
				if s := p.stringValue(e); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case []string:
			if len(v) > 0 {
				return v
			}
		default:
			if s := p.stringValue(v); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

// stringValue renders scalar feed values. Numeric ids arrive as float64 from
// encoding/json; trim the ".0" that %v would not produce but %f would.
func (p Product) stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}
