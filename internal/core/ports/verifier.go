package ports

import (
	"context"

	"github.com/academyhq/academy-client/internal/core/domain"
)

// Verifier reconciles the locally-held identity against the authoritative
// source. Safe to call concurrently; implementations should coalesce
// concurrent calls into one request.
type Verifier interface {
	// Verify returns the authoritative identity. Returns
	// domain.ErrUnauthenticated when the server reports no valid session and
	// *domain.NetworkError when the check cannot complete; the two must never
	// be conflated.
	Verify(ctx context.Context) (*domain.Identity, error)
}
