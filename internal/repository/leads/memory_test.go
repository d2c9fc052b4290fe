package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/faroled/faro/internal/domain"
	"github.com/faroled/faro/internal/domain/lead"
)

func TestMemorySaveAndGet(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	l, err := lead.New("ld-1", "Ana", "ana@example.com", "3001112233", "arquitecta", "Bogotá", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, l); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "ld-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Email() != "ana@example.com" || got.City() != "Bogotá" {
		t.Fatalf("got = %+v", got)
	}
}

func TestMemoryGetUnknown(t *testing.T) {
	repo := NewMemory()

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
