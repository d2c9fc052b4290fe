package chat

import (
	"context"

	"github.com/faroled/faro/internal/catalog"
	domses "github.com/faroled/faro/internal/domain/session"
	"github.com/faroled/faro/internal/repository/history"
)

// SessionStore persists per-conversation state by session id.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domses.State, error)
	Put(ctx context.Context, id string, st *domses.State) error
	Delete(ctx context.Context, id string) error
}

// HistoryWriter records chat exchanges.
type HistoryWriter interface {
	Append(ctx context.Context, e history.Entry) error
}

// Generator produces a short natural-language reply.
type Generator interface {
	Generate(ctx context.Context, system, userMsg string) (string, error)
}

// Catalog provides the current index snapshot.
type Catalog interface {
	Get() (*catalog.Snapshot, error)
}

// FAQ answers company questions from the static table.
type FAQ interface {
	TryAnswer(message string) (string, bool)
}
