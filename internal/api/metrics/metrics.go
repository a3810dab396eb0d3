// Package metrics defines and registers all custom Prometheus metrics for
// the identity service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto at
// package initialisation; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// RegistrationsTotal counts registration attempts by requested role and
// outcome.
// Labels:
//   - role: the requested role (e.g. "customer", "driver")
//   - outcome: "created", "role_added", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by role and outcome.",
	},
	[]string{"role", "outcome"},
)

// RateLimitDenialsTotal counts registration calls denied by the rate limiter.
var RateLimitDenialsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_denials_total",
		Help:      "Total number of registration calls denied by the rate limiter.",
	},
)

// BulkActionsTotal counts admin bulk calls.
// Labels:
//   - action: the bulk action name (e.g. "activate", "assign_role")
//   - outcome: "completed" (per-target results returned) or "rejected"
//     (a whole-call precondition failed)
var BulkActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_actions_total",
		Help:      "Total number of admin bulk calls, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// CompletionScore observes computed profile completion scores (0-100).
var CompletionScore = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "completion_score",
		Help:      "Distribution of computed profile completion scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, ..., 100
	},
)
