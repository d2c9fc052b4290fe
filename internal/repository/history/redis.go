package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/faroled/faro/internal/db"
)

const redisKeyPrefix = "faro:hist:"

// Redis appends transcript entries to a per-session list.
type Redis struct {
	list db.ListStore
}

// NewRedis creates a Redis-backed history log.
func NewRedis(list db.ListStore) *Redis {
	return &Redis{list: list}
}

// Append records an exchange.
func (r *Redis) Append(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if err := r.list.RPush(ctx, redisKeyPrefix+e.SessionID, raw); err != nil {
		return fmt.Errorf("append history for %q: %w", e.SessionID, err)
	}
	return nil
}

// List returns the transcript for a session, oldest first.
func (r *Redis) List(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := r.list.LRange(ctx, redisKeyPrefix+sessionID, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list history for %q: %w", sessionID, err)
	}
	out := make([]Entry, 0, len(rows))
	for _, raw := range rows {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue // skip corrupt entries rather than failing the read
		}
		out = append(out, e)
	}
	return out, nil
}
