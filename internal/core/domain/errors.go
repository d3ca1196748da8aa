package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when login is rejected by the server.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when the server reports no valid session.
	ErrUnauthenticated = errors.New("no valid session")

	// ErrNotAuthenticated marks a programming error: an operation that
	// requires a live session was called without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSuperseded is returned when an in-flight session operation completed
	// after a newer operation (typically logout) already took effect. The
	// result has been discarded.
	ErrSuperseded = errors.New("session operation superseded")

	// ErrNoProjection is returned by a ProjectionStore when no identity
	// projection has been persisted.
	ErrNoProjection = errors.New("no persisted identity projection")

	// ErrUnknownResource is returned for a resource type outside the known set.
	ErrUnknownResource = errors.New("unknown resource type")
)

// AccountUnapprovedError is returned when login is rejected because the
// account is pending review or has been rejected.
type AccountUnapprovedError struct {
	Status AccountStatus
}

func (e *AccountUnapprovedError) Error() string {
	return fmt.Sprintf("account not approved: status %s", e.Status)
}

// NetworkError wraps a call that could not complete. It must never be
// conflated with ErrUnauthenticated: a network hiccup does not log anyone out.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// MutationConflictError is returned when the server rejects a create, update
// or delete (validation failure, stale data, duplicate). The optimistic patch
// has been rolled back by the time the caller sees it.
type MutationConflictError struct {
	Resource ResourceType
	Reason   string
}

func (e *MutationConflictError) Error() string {
	return fmt.Sprintf("%s mutation rejected: %s", e.Resource, e.Reason)
}
