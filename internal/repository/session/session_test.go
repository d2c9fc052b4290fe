package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faroled/faro/internal/domain"
	domses "github.com/faroled/faro/internal/domain/session"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := context.Background()

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	st := domses.New()
	st.LastQuery = "reflector"
	st.MarkSeen("reflector", []string{"RF-100"})
	if err := store.Put(ctx, "s1", st); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastQuery != "reflector" || !got.Seen("reflector")["RF-100"] {
		t.Fatalf("state lost: %+v", got)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	store := NewMemory(20 * time.Millisecond)
	ctx := context.Background()

	if err := store.Put(ctx, "s1", domses.New()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(60 * time.Millisecond)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory(time.Minute)
	ctx := context.Background()

	_ = store.Put(ctx, "s1", domses.New())
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
