package storage

import (
	"context"
	"sync"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
)

// MemoryStore is a ProjectionStore held in process memory. Used in tests and
// for ephemeral sessions that should not survive the process.
type MemoryStore struct {
	mu       sync.Mutex
	identity *domain.Identity
}

var _ ports.ProjectionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the held projection.
func (s *MemoryStore) Load(_ context.Context) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, domain.ErrNoProjection
	}
	copy := *s.identity
	return &copy, nil
}

// Save replaces the held projection.
func (s *MemoryStore) Save(_ context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *identity
	s.identity = &copy
	return nil
}

// Clear drops the held projection.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return nil
}
