// Package metrics defines and registers the custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package init; the
// HTTP middleware metrics are registered separately by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts password logins.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts bearer tokens refused on protected routes.
// Label:
//   - reason: "missing", "malformed_header", "malformed", "bad_signature",
//     "expired" or "unknown_subject"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected during bearer token authentication.",
	},
	[]string{"reason"},
)

// AccessDeniedTotal counts authenticated requests refused with 403.
// Label:
//   - route: the matched route template (e.g. "/produtos/:id")
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of authenticated requests denied by role or ownership rules.",
	},
	[]string{"route"},
)

// ── Catalogue metrics ─────────────────────────────────────────────────────────

// UsersRegisteredTotal counts accounts created.
// Label:
//   - role: "produtor", "comprador" or "admin"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts registered, by role.",
	},
	[]string{"role"},
)

// ProductMutationsTotal counts successful product writes.
// Label:
//   - operation: "create", "update" or "delete"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of product listings created, updated or deleted.",
	},
	[]string{"operation"},
)
