// Package metrics defines and registers all custom Prometheus metrics for the
// PlayIndia web gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "playindia_web"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts outbound calls to the backend API.
// Labels:
//   - endpoint: logical endpoint name (e.g. "auth_register", "coach_profile", "forward")
//   - code: status class ("2xx", "4xx", "5xx") or "error" for transport failures
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the backend API.",
	},
	[]string{"endpoint", "code"},
)

// BackendRequestDuration measures backend round trips, including body reads.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Registration metrics ──────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts by outcome.
// Labels:
//   - role: user, coach, seller, delivery
//   - outcome: "registered", "profile_attached", "profile_failed", "rejected", "unreachable", "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by role and outcome.",
	},
	[]string{"role", "outcome"},
)

// IncompleteProfilesDropped counts audit records dropped because the queue was full.
var IncompleteProfilesDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incomplete_profiles_dropped_total",
		Help:      "Incomplete profile audit records dropped on a full queue.",
	},
)

// AuditQueueDepth tracks pending audit records per worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of incomplete profile records pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ── Session & dashboard metrics ───────────────────────────────────────────────

// SessionsTotal counts session lifecycle events.
// Label:
//   - event: "started", "ended", "expired", "rejected"
var SessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Session lifecycle events.",
	},
	[]string{"event"},
)

// DashboardLoadsTotal counts dashboard loads by role and result.
// Label:
//   - result: "ok", "login", "status", "home", "error"
var DashboardLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_loads_total",
		Help:      "Dashboard loads by role and result.",
	},
	[]string{"role", "result"},
)

// StatusPollsTotal counts status polls by the status observed.
var StatusPollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_polls_total",
		Help:      "Account status polls, by observed status.",
	},
	[]string{"status"},
)

// RateLimitedTotal counts requests rejected by the inbound rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the inbound rate limiter.",
	},
)
