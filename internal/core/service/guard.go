package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/metrics"
)

// GuardState is the resolution of one route guard evaluation.
type GuardState string

const (
	// StatePending means the session is still bootstrapping or the
	// evaluation was cancelled; render a loading indicator, nothing else.
	StatePending GuardState = "pending"
	// StateGranted allows the page to mount.
	StateGranted GuardState = "granted"
	// StateRedirectLogin sends the user to the login page.
	StateRedirectLogin GuardState = "redirect_login"
	// StateRedirectHome sends the user to Decision.Target.
	StateRedirectHome GuardState = "redirect_home"
)

// Decision is the terminal result of evaluating a route constraint.
// Retryable marks a RedirectLogin caused by a network failure rather than an
// invalid session: the caller should offer a retry instead of presenting a
// logout.
type Decision struct {
	State     GuardState
	Target    string
	Retryable bool
}

// RouteGuard is the authorization state machine gating page mount. It is
// deterministic and total: every evaluation resolves to exactly one state.
type RouteGuard struct {
	session *Session
	log     zerolog.Logger
}

// NewRouteGuard creates a RouteGuard over the given session.
func NewRouteGuard(session *Session, log zerolog.Logger) *RouteGuard {
	return &RouteGuard{session: session, log: log}
}

// Evaluate resolves a navigation against the constraint. Authorization
// decisions are never made on an unverified client-held role claim: the first
// guarded navigation of a session verifies against the server and adopts the
// authoritative identity.
//
// Cancellation of ctx (navigation superseded) resolves Pending and commits
// nothing.
func (g *RouteGuard) Evaluate(ctx context.Context, rc domain.RouteConstraint) Decision {
	d := g.evaluate(ctx, rc)
	metrics.GuardDecisionsTotal.WithLabelValues(string(d.State)).Inc()
	if d.State != StateGranted && d.State != StatePending {
		g.log.Debug().
			Str("path", rc.Path).
			Str("state", string(d.State)).
			Str("target", d.Target).
			Msg("navigation denied")
	}
	return d
}

func (g *RouteGuard) evaluate(ctx context.Context, rc domain.RouteConstraint) Decision {
	if g.session.IsLoading() {
		return Decision{State: StatePending}
	}
	if !g.session.IsAuthenticated() {
		return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
	}

	if !g.session.Verified() {
		identity, err := g.session.verifier.Verify(ctx)
		if ctx.Err() != nil {
			return Decision{State: StatePending}
		}
		if err != nil {
			if domain.IsNetwork(err) {
				// Do not log the user out over a network hiccup; the session
				// stays intact and the caller may retry.
				return Decision{State: StateRedirectLogin, Target: domain.PathLogin, Retryable: true}
			}
			if errors.Is(err, domain.ErrUnauthenticated) {
				if cerr := g.session.clearLocal(ctx); cerr != nil {
					g.log.Error().Err(cerr).Msg("forced logout failed to clear projection")
				}
			}
			return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
		}
		if err := g.session.adoptVerified(ctx, identity); err != nil {
			// Session ended while we were verifying.
			return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
		}
	}

	if ctx.Err() != nil {
		return Decision{State: StatePending}
	}

	identity, ok := g.session.Current()
	if !ok {
		return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
	}

	// An unapproved account is unusable regardless of role.
	if identity.Status != domain.StatusApproved {
		return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
	}

	if !rc.Allows(identity.Role) {
		home, ok := domain.HomePath(identity.Role)
		if !ok {
			return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
		}
		return Decision{State: StateRedirectHome, Target: home}
	}

	if rc.Profile == domain.ProfileRequired &&
		identity.Role == domain.RolePlayer &&
		!identity.ProfileCompleted &&
		rc.Path != domain.PathCompleteProfile {
		return Decision{State: StateRedirectHome, Target: domain.PathCompleteProfile}
	}

	if rc.Profile == domain.ProfileExempt && identity.ProfileCompleted {
		home, ok := domain.HomePath(identity.Role)
		if !ok {
			return Decision{State: StateRedirectLogin, Target: domain.PathLogin}
		}
		return Decision{State: StateRedirectHome, Target: home}
	}

	return Decision{State: StateGranted}
}
