package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/faroled/faro/internal/db"
	"github.com/faroled/faro/internal/domain"
	domses "github.com/faroled/faro/internal/domain/session"
)

const redisKeyPrefix = "faro:sess:"

// Redis stores session state as JSON values with a TTL, for deployments
// where conversations must survive a restart or span replicas.
type Redis struct {
	kv  db.KVStore
	ttl time.Duration
}

// NewRedis creates a Redis-backed session store.
func NewRedis(kv db.KVStore, ttl time.Duration) *Redis {
	return &Redis{kv: kv, ttl: ttl}
}

// Get returns the state for a session id.
func (r *Redis) Get(ctx context.Context, id string) (*domses.State, error) {
	raw, err := r.kv.Get(ctx, redisKeyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("get session %q: %w", id, err)
	}
	var st domses.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", id, err)
	}
	return &st, nil
}

// Put stores the state and refreshes its TTL.
func (r *Redis) Put(ctx context.Context, id string, st *domses.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", id, err)
	}
	if err := r.kv.SetWithTTL(ctx, redisKeyPrefix+id, raw, r.ttl); err != nil {
		return fmt.Errorf("put session %q: %w", id, err)
	}
	return nil
}

// Delete removes a session.
func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.kv.Del(ctx, redisKeyPrefix+id); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}
