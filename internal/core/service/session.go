package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
	"github.com/academyhq/academy-client/internal/metrics"
)

// Session is the single source of truth for "who is the client, right now, as
// far as the UI should optimistically assume". It mirrors the in-memory
// identity to a ProjectionStore; the two never diverge after an operation
// completes.
//
// Identity-mutating operations are tagged with a generation counter taken at
// issue time. A result arriving after a newer operation took effect is
// discarded, so a stale login success cannot resurrect a session the user
// explicitly ended.
type Session struct {
	api      ports.AuthAPI
	store    ports.ProjectionStore
	verifier ports.Verifier
	log      zerolog.Logger

	mu           sync.Mutex
	identity     *domain.Identity
	authed       bool
	loading      bool
	verified     bool
	generation   uint64
	bootstrapped bool
}

// NewSession creates a Session. The session reports loading until Bootstrap
// has run.
func NewSession(api ports.AuthAPI, store ports.ProjectionStore, verifier ports.Verifier, log zerolog.Logger) *Session {
	return &Session{
		api:      api,
		store:    store,
		verifier: verifier,
		log:      log,
		loading:  true,
	}
}

// Current returns a copy of the held identity. ok is false when no
// authenticated session exists.
func (s *Session) Current() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authed || s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// IsAuthenticated reports whether a session is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

// IsLoading reports whether the initial bootstrap is still in progress. It is
// true at most once per process lifetime.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Verified reports whether the held identity came from a verified server
// response this process lifetime.
func (s *Session) Verified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified
}

// Bootstrap restores the session from the persisted projection, exactly once
// per process. A persisted projection is advisory only: it is re-verified
// before the session is marked authenticated. Bootstrap always terminates
// with loading=false, whatever the outcome.
func (s *Session) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.bootstrapped {
		s.mu.Unlock()
		return
	}
	s.bootstrapped = true
	gen := s.generation
	s.mu.Unlock()

	defer metrics.SessionEventsTotal.WithLabelValues("bootstrap").Inc()

	if _, err := s.store.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrNoProjection) {
			// Unreadable projection: drop it rather than retrying forever.
			s.log.Warn().Err(err).Msg("clearing corrupt identity projection")
			if cerr := s.store.Clear(ctx); cerr != nil {
				s.log.Error().Err(cerr).Msg("failed to clear corrupt projection")
			}
		}
		s.finishBootstrap(gen, nil)
		return
	}

	identity, err := s.verifier.Verify(ctx)
	if err != nil {
		if domain.IsNetwork(err) {
			// A network hiccup is not a logout: keep the projection so a
			// later retry can still succeed, but stay unauthenticated.
			s.log.Warn().Err(err).Msg("bootstrap verification unreachable")
		} else {
			s.log.Info().Msg("persisted session no longer valid")
			if cerr := s.store.Clear(ctx); cerr != nil {
				s.log.Error().Err(cerr).Msg("failed to clear stale projection")
			}
		}
		s.finishBootstrap(gen, nil)
		return
	}

	if err := s.store.Save(ctx, identity); err != nil {
		// Memory and projection must not diverge: without a persisted copy
		// the bootstrap is treated as failed.
		s.log.Error().Err(err).Msg("failed to persist verified identity")
		s.finishBootstrap(gen, nil)
		return
	}

	s.finishBootstrap(gen, identity)
}

func (s *Session) finishBootstrap(gen uint64, identity *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity != nil && s.generation == gen {
		s.identity = identity
		s.authed = true
		s.verified = true
	}
	s.loading = false
}

// Login authenticates with the backend and, on success, stores the returned
// identity in memory and in the projection store. On failure the session is
// left exactly as it was.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	identity, err := s.api.Login(ctx, email, password)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.log.Info().Str("email", email).Msg("discarding superseded login result")
		return nil, domain.ErrSuperseded
	}
	if err := s.store.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("persist identity projection: %w", err)
	}
	s.identity = identity
	s.authed = true
	s.verified = true
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("logged in")
	return identity, nil
}

// Logout ends the session. The server-side invalidation call is best-effort;
// local state and the persisted projection are cleared unconditionally, so
// the client can never be left looking authenticated.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("server-side logout failed, clearing local session anyway")
	}

	return s.clearLocal(ctx)
}

// clearLocal drops the in-memory identity and the persisted projection
// without contacting the server. Used by Logout and by forced logout on an
// Unauthenticated verification result.
func (s *Session) clearLocal(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.authed = false
	s.verified = false
	s.mu.Unlock()

	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear identity projection")
		return fmt.Errorf("clear identity projection: %w", err)
	}
	return nil
}

// UpdateIdentity shallow-merges the patch into the current identity and
// re-persists the projection. Calling it without a session is a programming
// error and returns domain.ErrNotAuthenticated.
func (s *Session) UpdateIdentity(ctx context.Context, patch domain.IdentityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authed || s.identity == nil {
		return domain.ErrNotAuthenticated
	}

	merged := s.identity.Merge(patch)
	if err := s.store.Save(ctx, &merged); err != nil {
		return fmt.Errorf("persist identity projection: %w", err)
	}
	s.identity = &merged
	return nil
}

// adoptVerified replaces the held identity wholesale with a verified server
// response and marks the session verified for the rest of the process
// lifetime. Role and status are only ever updated through this path.
func (s *Session) adoptVerified(ctx context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authed {
		return domain.ErrNotAuthenticated
	}
	if err := s.store.Save(ctx, identity); err != nil {
		return fmt.Errorf("persist identity projection: %w", err)
	}
	s.identity = identity
	s.verified = true
	return nil
}
