package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/academyhq/academy-client/internal/core/domain"
)

// guardFixture builds a session in an already-settled state so each decision
// path can be exercised directly.
func guardFixture(identity domain.Identity, verified bool, verifier *stubVerifier) (*RouteGuard, *Session, *stubStore) {
	store := &stubStore{identity: &identity}
	s := newTestSession(&stubAuthAPI{}, store, verifier)
	s.mu.Lock()
	s.loading = false
	s.bootstrapped = true
	s.authed = true
	s.verified = verified
	cp := identity
	s.identity = &cp
	s.mu.Unlock()
	return NewRouteGuard(s, zerolog.Nop()), s, store
}

func adminRoute() domain.RouteConstraint {
	return domain.RouteConstraint{Path: "/admin/players", AllowedRoles: []domain.Role{domain.RoleAdmin}}
}

func TestRouteGuard_PendingWhileLoading(t *testing.T) {
	s := newTestSession(&stubAuthAPI{}, &stubStore{}, &stubVerifier{})
	g := NewRouteGuard(s, zerolog.Nop())

	if d := g.Evaluate(context.Background(), adminRoute()); d.State != StatePending {
		t.Fatalf("loading session must resolve pending, got %+v", d)
	}
}

func TestRouteGuard_UnauthenticatedRedirectsLogin(t *testing.T) {
	s := newTestSession(&stubAuthAPI{}, &stubStore{}, &stubVerifier{})
	s.Bootstrap(context.Background())
	g := NewRouteGuard(s, zerolog.Nop())

	d := g.Evaluate(context.Background(), adminRoute())
	if d.State != StateRedirectLogin || d.Target != domain.PathLogin {
		t.Fatalf("unauthenticated must redirect to login, got %+v", d)
	}
	if d.Retryable {
		t.Fatalf("a plain missing session is not retryable")
	}
}

func TestRouteGuard_RoleMismatchRedirectsOwnHome(t *testing.T) {
	g, _, _ := guardFixture(approvedIdentity(domain.RoleAgent), true, &stubVerifier{})

	d := g.Evaluate(context.Background(), adminRoute())
	if d.State != StateRedirectHome || d.Target != "/agent/dashboard" {
		t.Fatalf("agent on an admin route must land on the agent dashboard, got %+v", d)
	}
}

func TestRouteGuard_AllowedRoleGranted(t *testing.T) {
	g, _, _ := guardFixture(approvedIdentity(domain.RoleAdmin), true, &stubVerifier{})

	if d := g.Evaluate(context.Background(), adminRoute()); d.State != StateGranted {
		t.Fatalf("admin on an admin route must be granted, got %+v", d)
	}
}

func TestRouteGuard_UnapprovedAccountRedirectsLogin(t *testing.T) {
	for _, status := range []domain.AccountStatus{domain.StatusPending, domain.StatusRejected} {
		identity := approvedIdentity(domain.RoleAdmin)
		identity.Status = status
		g, _, _ := guardFixture(identity, true, &stubVerifier{})

		d := g.Evaluate(context.Background(), adminRoute())
		if d.State != StateRedirectLogin {
			t.Fatalf("status %s must redirect to login, got %+v", status, d)
		}
	}
}

func TestRouteGuard_IncompleteProfileForcedToCompletion(t *testing.T) {
	identity := approvedIdentity(domain.RolePlayer)
	identity.ProfileCompleted = false
	g, _, _ := guardFixture(identity, true, &stubVerifier{})

	d := g.Evaluate(context.Background(), domain.RouteConstraint{
		Path:         "/player/dashboard",
		AllowedRoles: []domain.Role{domain.RolePlayer},
		Profile:      domain.ProfileRequired,
	})
	if d.State != StateRedirectHome || d.Target != domain.PathCompleteProfile {
		t.Fatalf("incomplete player must be sent to profile completion, got %+v", d)
	}
}

func TestRouteGuard_CompletionPageGrantedToIncompletePlayer(t *testing.T) {
	identity := approvedIdentity(domain.RolePlayer)
	identity.ProfileCompleted = false
	g, _, _ := guardFixture(identity, true, &stubVerifier{})

	d := g.Evaluate(context.Background(), domain.RouteConstraint{
		Path:         domain.PathCompleteProfile,
		AllowedRoles: []domain.Role{domain.RolePlayer},
		Profile:      domain.ProfileExempt,
	})
	if d.State != StateGranted {
		t.Fatalf("the completion page itself must never bounce an incomplete player, got %+v", d)
	}
}

func TestRouteGuard_CompletionPageBouncesCompletedPlayer(t *testing.T) {
	g, _, _ := guardFixture(approvedIdentity(domain.RolePlayer), true, &stubVerifier{})

	d := g.Evaluate(context.Background(), domain.RouteConstraint{
		Path:         domain.PathCompleteProfile,
		AllowedRoles: []domain.Role{domain.RolePlayer},
		Profile:      domain.ProfileExempt,
	})
	if d.State != StateRedirectHome || d.Target != "/player/dashboard" {
		t.Fatalf("completed player must be bounced off the completion page, got %+v", d)
	}
}

func TestRouteGuard_ProfileGateIgnoresNonPlayers(t *testing.T) {
	identity := approvedIdentity(domain.RoleAdmin)
	identity.ProfileCompleted = false
	g, _, _ := guardFixture(identity, true, &stubVerifier{})

	d := g.Evaluate(context.Background(), domain.RouteConstraint{
		Path:         "/admin/players",
		AllowedRoles: []domain.Role{domain.RoleAdmin},
		Profile:      domain.ProfileRequired,
	})
	if d.State != StateGranted {
		t.Fatalf("profile completion only gates players, got %+v", d)
	}
}

func TestRouteGuard_VerifyNetworkErrorIsRetryable(t *testing.T) {
	verifier := &stubVerifier{verifyFn: func(ctx context.Context) (*domain.Identity, error) {
		return nil, &domain.NetworkError{Op: "verify", Err: errors.New("connection refused")}
	}}
	g, s, store := guardFixture(approvedIdentity(domain.RoleAdmin), false, verifier)

	d := g.Evaluate(context.Background(), adminRoute())
	if d.State != StateRedirectLogin || !d.Retryable {
		t.Fatalf("network failure must redirect retryably, got %+v", d)
	}
	if !s.IsAuthenticated() {
		t.Fatalf("a network hiccup must not end the session")
	}
	if store.held() == nil {
		t.Fatalf("a network hiccup must not destroy the projection")
	}
}

func TestRouteGuard_VerifyUnauthenticatedForcesLogout(t *testing.T) {
	verifier := &stubVerifier{verifyFn: func(ctx context.Context) (*domain.Identity, error) {
		return nil, domain.ErrUnauthenticated
	}}
	g, s, store := guardFixture(approvedIdentity(domain.RoleAdmin), false, verifier)

	d := g.Evaluate(context.Background(), adminRoute())
	if d.State != StateRedirectLogin || d.Retryable {
		t.Fatalf("a rejected session must redirect non-retryably, got %+v", d)
	}
	if s.IsAuthenticated() {
		t.Fatalf("a rejected session must be cleared")
	}
	if store.held() != nil {
		t.Fatalf("a rejected session's projection must be cleared")
	}
}

func TestRouteGuard_VerifySuccessAdoptsAuthoritativeIdentity(t *testing.T) {
	// The client-held claim says admin; the server says agent. The decision
	// must be made on the server's answer.
	refreshed := approvedIdentity(domain.RoleAgent)
	verifier := &stubVerifier{verifyFn: func(ctx context.Context) (*domain.Identity, error) {
		cp := refreshed
		return &cp, nil
	}}
	g, s, _ := guardFixture(approvedIdentity(domain.RoleAdmin), false, verifier)

	d := g.Evaluate(context.Background(), adminRoute())
	if d.State != StateRedirectHome || d.Target != "/agent/dashboard" {
		t.Fatalf("decision must use the verified role, got %+v", d)
	}
	if got, _ := s.Current(); got.Role != domain.RoleAgent {
		t.Fatalf("session must adopt the verified identity, got role %s", got.Role)
	}
	if !s.Verified() {
		t.Fatalf("successful verification must stick for the session")
	}
}

func TestRouteGuard_CancelledNavigationResolvesPending(t *testing.T) {
	g, _, _ := guardFixture(approvedIdentity(domain.RoleAdmin), true, &stubVerifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if d := g.Evaluate(ctx, adminRoute()); d.State != StatePending {
		t.Fatalf("superseded navigation must resolve pending, got %+v", d)
	}
}

// TestRouteGuard_Totality sweeps session states against constraint shapes and
// checks every evaluation lands in exactly one well-formed state.
func TestRouteGuard_Totality(t *testing.T) {
	roles := []domain.Role{domain.RoleAdmin, domain.RolePlayer, domain.RoleAgent}
	statuses := []domain.AccountStatus{domain.StatusPending, domain.StatusApproved, domain.StatusRejected}
	gates := []domain.ProfileGate{domain.ProfileAny, domain.ProfileRequired, domain.ProfileExempt}
	roleSets := [][]domain.Role{
		nil,
		{domain.RoleAdmin},
		{domain.RolePlayer},
		{domain.RoleAgent},
		{domain.RoleAdmin, domain.RoleAgent},
		{domain.RoleAdmin, domain.RolePlayer, domain.RoleAgent},
	}

	for _, role := range roles {
		for _, status := range statuses {
			for _, completed := range []bool{true, false} {
				for _, allowed := range roleSets {
					for _, gate := range gates {
						identity := approvedIdentity(role)
						identity.Status = status
						identity.ProfileCompleted = completed
						g, _, _ := guardFixture(identity, true, &stubVerifier{})

						rc := domain.RouteConstraint{Path: "/some/page", AllowedRoles: allowed, Profile: gate}
						d := g.Evaluate(context.Background(), rc)

						switch d.State {
						case StateGranted, StatePending:
							if d.Target != "" {
								t.Fatalf("%s has no target, got %+v", d.State, d)
							}
						case StateRedirectLogin, StateRedirectHome:
							if d.Target == "" {
								t.Fatalf("redirect without a target: %+v (role=%s status=%s)", d, role, status)
							}
						default:
							t.Fatalf("unknown state %q", d.State)
						}
					}
				}
			}
		}
	}
}
