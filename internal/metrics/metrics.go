// Package metrics defines the Prometheus collectors for the users service.
// Collectors register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat_users"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern (e.g. "/api/v1/users/{user_id}")
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency by route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// PermissionUpdatesTotal counts writes to the permission configuration.
// Label:
//   - scope: "global", "roles" or "role"
var PermissionUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_updates_total",
		Help:      "Total number of permission configuration updates, by scope.",
	},
	[]string{"scope"},
)

// UserMutationsTotal counts admin mutations on user accounts.
// Labels:
//   - action: "update" or "delete"
//   - result: "ok", "forbidden", "conflict", "not_found" or "error"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of admin user mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// ToolServersStrippedTotal counts settings updates where ui.toolServers was removed.
var ToolServersStrippedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_tool_servers_stripped_total",
		Help:      "Total number of settings updates that had ui.toolServers removed for lack of permission.",
	},
)

// PresenceHeartbeatsTotal counts successful presence heartbeats.
var PresenceHeartbeatsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_heartbeats_total",
		Help:      "Total number of presence heartbeats recorded.",
	},
)

// EventDeliveriesTotal counts event handler invocations on the in-process bus.
// Labels:
//   - event_type: e.g. "user.deleted"
//   - mode: "sync" or "async"
//   - result: "ok" or "error"
var EventDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_deliveries_total",
		Help:      "Total number of event handler invocations, by event type, mode and result.",
	},
	[]string{"event_type", "mode", "result"},
)
