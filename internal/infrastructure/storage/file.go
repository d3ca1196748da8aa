// Package storage provides ProjectionStore implementations for the persisted
// identity projection: a JSON file for single-seat use, Redis for shared
// kiosk deployments, and an in-memory store for tests.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
)

const projectionFile = "identity.json"

// FileStore persists the identity projection as a JSON file under a state
// directory (by default ~/.academy). The projection carries no token
// material, so plain-file permissions are sufficient.
type FileStore struct {
	path string
}

var _ ports.ProjectionStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating the directory if
// needed. An empty dir defaults to ~/.academy.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".academy")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, projectionFile)}, nil
}

// Load reads the persisted projection.
func (s *FileStore) Load(_ context.Context) (*domain.Identity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNoProjection
		}
		return nil, fmt.Errorf("read identity projection: %w", err)
	}
	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("decode identity projection: %w", err)
	}
	return &identity, nil
}

// Save writes the projection atomically (write-then-rename) so a crash cannot
// leave a half-written file behind.
func (s *FileStore) Save(_ context.Context, identity *domain.Identity) error {
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity projection: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write identity projection: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace identity projection: %w", err)
	}
	return nil
}

// Clear removes the projection file. Missing file is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove identity projection: %w", err)
	}
	return nil
}
