// Package metrics defines and registers all custom Prometheus metrics for the
// academy client. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at package
// init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "academy"

// ── Session / verification metrics ───────────────────────────────────────────

// VerificationsTotal counts identity verification attempts.
// Label:
//   - outcome: "ok", "unauthenticated" or "network_error"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of identity verification calls, by outcome.",
	},
	[]string{"outcome"},
)

// SessionEventsTotal counts session lifecycle transitions.
// Label:
//   - event: "login", "login_failed", "logout", "bootstrap"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// ── Route guard metrics ───────────────────────────────────────────────────────

// GuardDecisionsTotal counts resolved guard evaluations.
// Label:
//   - state: "granted", "redirect_login", "redirect_home", "pending"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard evaluations, by resolved state.",
	},
	[]string{"state"},
)

// ── Resource cache metrics ────────────────────────────────────────────────────

// CacheRequestsTotal counts list queries against the resource cache.
// Labels:
//   - resource: resource type (e.g. "players")
//   - result: "hit" (fresh cache), "miss" (first fetch), "stale" (expired, refetched)
var CacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of resource list queries, by cache result.",
	},
	[]string{"resource", "result"},
)

// MutationsTotal counts optimistic mutations by final outcome.
// Labels:
//   - resource: resource type
//   - operation: "create", "update" or "delete"
//   - outcome: "confirmed" or "rolled_back"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of optimistic mutations, by operation and outcome.",
	},
	[]string{"resource", "operation", "outcome"},
)
