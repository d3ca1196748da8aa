package ports

import (
	"context"

	"github.com/academyhq/academy-client/internal/core/domain"
)

// ProjectionStore persists the advisory identity projection. The projection
// is display-only and must be re-verified before being trusted for
// authorization decisions; it never contains token material.
type ProjectionStore interface {
	// Load returns the persisted projection. Returns domain.ErrNoProjection
	// when nothing is persisted; any other error means the stored data is
	// unreadable or corrupt.
	Load(ctx context.Context) (*domain.Identity, error)

	// Save replaces the persisted projection.
	Save(ctx context.Context, identity *domain.Identity) error

	// Clear removes the persisted projection. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}
