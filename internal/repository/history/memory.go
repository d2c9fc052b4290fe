// Package history stores the conversation transcript per session, one entry
// per exchange.
package history

import (
	"context"
	"sync"
	"time"
)

// Entry is one user/assistant exchange.
type Entry struct {
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	At          time.Time `json:"at"`
}

// Memory keeps transcripts in process memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemory creates an in-memory history log.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Entry)}
}

// Append records an exchange.
func (m *Memory) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.SessionID] = append(m.entries[e.SessionID], e)
	return nil
}

// List returns the transcript for a session, oldest first. A session with no
// history yields an empty slice, not an error.
func (m *Memory) List(_ context.Context, sessionID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.entries[sessionID]
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}
