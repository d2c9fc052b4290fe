package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/faroled/faro/internal/domain"
	"github.com/faroled/faro/internal/domain/product"
)

// Source provides the product list and a content hash identifying it.
type Source interface {
	Load() (products []product.Product, hash string, err error)
}

// FileSource reads a JSON product feed from disk. The feed is either an
// array of records or an object keyed by product id; non-object rows are
// skipped. Stat results are cached so an unchanged file is not re-read and
// re-hashed on every request.
type FileSource struct {
	Path string

	mu       sync.Mutex
	modTime  time.Time
	size     int64
	products []product.Product
	hash     string
}

// NewFileSource creates a source for the given feed path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load implements Source.
func (f *FileSource) Load() ([]product.Product, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: stat %s: %v", domain.ErrCatalogUnavailable, f.Path, err)
	}
	if f.products != nil && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return f.products, f.hash, nil
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %v", domain.ErrCatalogUnavailable, f.Path, err)
	}
	products, err := parseFeed(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: parse %s: %v", domain.ErrCatalogUnavailable, f.Path, err)
	}

	sum := sha256.Sum256(raw)
	f.products = products
	f.hash = hex.EncodeToString(sum[:])
	f.modTime = info.ModTime()
	f.size = info.Size()
	return f.products, f.hash, nil
}

func parseFeed(raw []byte) ([]product.Product, error) {
	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return collect(asList), nil
	}

	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(asMap))
	for k := range asMap {
		keys = append(keys, k)
	}
	sort.Strings(keys) // stable row order across rebuilds
	rows := make([]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, asMap[k])
	}
	return collect(rows), nil
}

func collect(rows []any) []product.Product {
	out := make([]product.Product, 0, len(rows))
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, product.FromMap(m))
	}
	return out
}
