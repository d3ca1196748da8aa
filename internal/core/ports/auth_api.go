package ports

import (
	"context"

	"github.com/academyhq/academy-client/internal/core/domain"
)

// AuthAPI is the authentication surface of the backend. The session token
// itself is never exposed to callers; it lives in an HTTP-only cookie managed
// by the transport.
type AuthAPI interface {
	// Login authenticates with email and password. Implementations return
	// domain.ErrInvalidCredentials, *domain.AccountUnapprovedError or
	// *domain.NetworkError on failure.
	Login(ctx context.Context, email, password string) (*domain.Identity, error)

	// Logout invalidates the server-side session. Idempotent.
	Logout(ctx context.Context) error

	// Me returns the authoritative identity for the current session.
	// Returns domain.ErrUnauthenticated when no valid session exists and
	// *domain.NetworkError when the call cannot complete.
	Me(ctx context.Context) (*domain.Identity, error)
}
