// Package session persists per-conversation state behind a get/put/delete
// contract, with in-memory TTL and Redis drivers.
package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/faroled/faro/internal/domain"
	domses "github.com/faroled/faro/internal/domain/session"
)

// Memory is the default session store: an in-process TTL cache. Idle
// sessions expire instead of accumulating for the process lifetime.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory store where sessions idle out after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{cache: gocache.New(ttl, 2*ttl)}
}

// Get returns the state for a session id.
func (m *Memory) Get(_ context.Context, id string) (*domses.State, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	return v.(*domses.State), nil
}

// Put stores the state and refreshes its TTL.
func (m *Memory) Put(_ context.Context, id string, st *domses.State) error {
	m.cache.Set(id, st, gocache.DefaultExpiration)
	return nil
}

// Delete removes a session.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}
