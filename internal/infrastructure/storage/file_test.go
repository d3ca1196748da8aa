package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/academyhq/academy-client/internal/core/domain"
)

func testIdentity() *domain.Identity {
	return &domain.Identity{
		ID:               "u-1",
		Email:            "admin@academy.test",
		FirstName:        "Rui",
		LastName:         "Costa",
		Role:             domain.RoleAdmin,
		Status:           domain.StatusApproved,
		ProfileCompleted: true,
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoProjection) {
		t.Fatalf("empty store must report ErrNoProjection, got %v", err)
	}

	want := testIdentity()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clearing an empty store must succeed: %v", err)
	}
	if err := store.Save(ctx, testIdentity()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoProjection) {
		t.Fatalf("cleared store must report ErrNoProjection, got %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, projectionFile), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, err = store.Load(context.Background())
	if err == nil {
		t.Fatalf("corrupt file must fail to load")
	}
	if errors.Is(err, domain.ErrNoProjection) {
		t.Fatalf("corruption must be distinguishable from absence, got %v", err)
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	first := testIdentity()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := testIdentity()
	second.Email = "replaced@academy.test"
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Email != "replaced@academy.test" {
		t.Fatalf("save must replace wholesale, got %s", got.Email)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoProjection) {
		t.Fatalf("empty store must report ErrNoProjection, got %v", err)
	}
	want := testIdentity()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got.Email = "mutated@academy.test"

	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again.Email != want.Email {
		t.Fatalf("store must hand out copies, got %s", again.Email)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoProjection) {
		t.Fatalf("cleared store must report ErrNoProjection, got %v", err)
	}
}
