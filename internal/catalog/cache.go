package catalog

import (
	"sync"
	"sync/atomic"
)

// Cache owns the current index snapshot. Readers get an immutable *Snapshot
// with a plain atomic load; a rebuild happens only when the source reports a
// different content hash and is swapped in atomically. A redundant rebuild
// under concurrent first access wastes CPU, never correctness.
type Cache struct {
	source    Source
	snapshot  atomic.Pointer[Snapshot]
	mu        sync.Mutex
	onRebuild func()
}

// NewCache wraps a source. onRebuild, when non-nil, is invoked after every
// index build (metrics hook).
func NewCache(source Source, onRebuild func()) *Cache {
	return &Cache{source: source, onRebuild: onRebuild}
}

// Get returns the snapshot for the source's current content, rebuilding if
// the feed changed. On source failure an existing snapshot is served stale
// rather than failing the request; the error is returned only when there is
// nothing to serve at all.
func (c *Cache) Get() (*Snapshot, error) {
	cur := c.snapshot.Load()

	products, hash, err := c.source.Load()
	if err != nil {
		if cur != nil {
			return cur, nil
		}
		return nil, err
	}
	if cur != nil && cur.Hash() == hash {
		return cur, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur = c.snapshot.Load(); cur != nil && cur.Hash() == hash {
		return cur, nil
	}
	snap := Build(products, hash)
	c.snapshot.Store(snap)
	if c.onRebuild != nil {
		c.onRebuild()
	}
	return snap, nil
}
