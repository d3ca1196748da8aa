package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/academyhq/academy-client/internal/core/domain"
)

func TestVerifier_Success(t *testing.T) {
	identity := approvedIdentity(domain.RoleAdmin)
	api := &stubAuthAPI{meFn: func(ctx context.Context) (*domain.Identity, error) {
		cp := identity
		return &cp, nil
	}}
	v := NewVerifier(api, 0, zerolog.Nop())

	got, err := v.Verify(context.Background())
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.ID != identity.ID {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestVerifier_PreservesUnauthenticated(t *testing.T) {
	api := &stubAuthAPI{meFn: func(ctx context.Context) (*domain.Identity, error) {
		return nil, domain.ErrUnauthenticated
	}}
	v := NewVerifier(api, 0, zerolog.Nop())

	_, err := v.Verify(context.Background())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if domain.IsNetwork(err) {
		t.Fatalf("unauthenticated must never be classified as a network failure")
	}
}

func TestVerifier_ClassifiesUnknownFailureAsNetwork(t *testing.T) {
	api := &stubAuthAPI{meFn: func(ctx context.Context) (*domain.Identity, error) {
		return nil, errors.New("malformed response body")
	}}
	v := NewVerifier(api, 0, zerolog.Nop())

	_, err := v.Verify(context.Background())
	if !domain.IsNetwork(err) {
		t.Fatalf("unclassified failure must surface as a network error, got %v", err)
	}
}

func TestVerifier_TimeoutIsNetworkError(t *testing.T) {
	api := &stubAuthAPI{meFn: func(ctx context.Context) (*domain.Identity, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	v := NewVerifier(api, 30*time.Millisecond, zerolog.Nop())

	_, err := v.Verify(context.Background())
	if !domain.IsNetwork(err) {
		t.Fatalf("a hung verification must surface as a network error, got %v", err)
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("a timeout must never look like a logout")
	}
}

func TestVerifier_OutlivesFirstCallerCancellation(t *testing.T) {
	identity := approvedIdentity(domain.RoleAdmin)
	api := &stubAuthAPI{meFn: func(ctx context.Context) (*domain.Identity, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cp := identity
		return &cp, nil
	}}
	v := NewVerifier(api, 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The flight detaches from its caller's cancellation, so an already
	// cancelled caller still produces a usable result for anyone sharing it.
	if _, err := v.Verify(ctx); err != nil {
		t.Fatalf("verification must not inherit caller cancellation: %v", err)
	}
}

func TestVerifier_CoalescesConcurrentCallers(t *testing.T) {
	var calls int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	identity := approvedIdentity(domain.RoleAdmin)
	api := &stubAuthAPI{meFn: func(ctx context.Context) (*domain.Identity, error) {
		atomic.AddInt32(&calls, 1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		cp := identity
		return &cp, nil
	}}
	v := NewVerifier(api, time.Second, zerolog.Nop())

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = v.Verify(context.Background())
		}(i)
	}

	<-started
	time.Sleep(100 * time.Millisecond) // let the rest join the flight
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d failed: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("concurrent verifications must share one request, got %d", got)
	}
}
