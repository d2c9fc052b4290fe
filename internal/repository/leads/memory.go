// Package leads stores captured sales contacts.
package leads

import (
	"context"
	"fmt"
	"sync"

	"github.com/faroled/faro/internal/domain"
	"github.com/faroled/faro/internal/domain/lead"
)

// Memory keeps leads in process memory; the CRM webhook is the durable sink.
type Memory struct {
	mu    sync.RWMutex
	leads map[string]lead.Lead
}

// NewMemory creates an in-memory lead store.
func NewMemory() *Memory {
	return &Memory{leads: make(map[string]lead.Lead)}
}

// Save stores a lead by id.
func (m *Memory) Save(_ context.Context, l lead.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.ID()] = l
	return nil
}

// Get returns a lead by id.
func (m *Memory) Get(_ context.Context, id string) (lead.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[id]
	if !ok {
		return lead.Lead{}, fmt.Errorf("lead %q: %w", id, domain.ErrNotFound)
	}
	return l, nil
}
