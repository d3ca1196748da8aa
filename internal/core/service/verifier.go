package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
	"github.com/academyhq/academy-client/internal/metrics"
)

const defaultVerifyTimeout = 10 * time.Second

// Verifier reconciles the claimed identity against the backend's /auth/me.
// Concurrent callers share one in-flight request, and every request carries a
// hard timeout so a hung verification cannot leave a route guard pending
// forever.
type Verifier struct {
	api     ports.AuthAPI
	timeout time.Duration
	log     zerolog.Logger

	group singleflight.Group
}

var _ ports.Verifier = (*Verifier)(nil)

// NewVerifier creates a Verifier. If timeout <= 0, a default of 10s is used.
func NewVerifier(api ports.AuthAPI, timeout time.Duration, log zerolog.Logger) *Verifier {
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	return &Verifier{api: api, timeout: timeout, log: log}
}

// Verify issues a "who am I" query. Idempotent and safe to call concurrently:
// overlapping calls coalesce into a single network request.
func (v *Verifier) Verify(ctx context.Context) (*domain.Identity, error) {
	res, err, shared := v.group.Do("verify", func() (any, error) {
		// The flight may outlive its first caller; detach from that caller's
		// cancellation but keep a hard deadline of our own.
		vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.timeout)
		defer cancel()

		identity, err := v.api.Me(vctx)
		if err != nil {
			if errors.Is(vctx.Err(), context.DeadlineExceeded) && !domain.IsNetwork(err) {
				err = &domain.NetworkError{Op: "verify", Err: vctx.Err()}
			}
			return nil, err
		}
		return identity, nil
	})
	if shared {
		v.log.Debug().Msg("verification shared with concurrent caller")
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			metrics.VerificationsTotal.WithLabelValues("unauthenticated").Inc()
		case domain.IsNetwork(err):
			metrics.VerificationsTotal.WithLabelValues("network_error").Inc()
		default:
			metrics.VerificationsTotal.WithLabelValues("network_error").Inc()
			err = &domain.NetworkError{Op: "verify", Err: err}
		}
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues("ok").Inc()
	return res.(*domain.Identity), nil
}
