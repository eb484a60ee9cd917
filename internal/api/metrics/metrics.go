// Package metrics defines and registers all custom Prometheus metrics for the
// energy-tracking API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "energy"

// ConsumptionsCreatedTotal counts consumption records successfully created.
// Label:
//   - target: hierarchy level the record attaches to ("property", "area", "device")
var ConsumptionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consumptions_created_total",
		Help:      "Total number of consumption records created, by target level.",
	},
	[]string{"target"},
)

// ConsumptionConflictsTotal counts creations rejected by the duplicate-period
// guard (pre-check hit or unique-index violation).
var ConsumptionConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consumption_conflicts_total",
		Help:      "Total number of consumption creations rejected as duplicate period buckets.",
	},
)

// OwnershipDeniedTotal counts chain-walk failures where the resource exists
// but belongs to another user.
// Label:
//   - resource: level at which the denial happened (e.g. "property", "distributor")
var OwnershipDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ownership_denied_total",
		Help:      "Total number of operations denied by the ownership check, by resource.",
	},
	[]string{"resource"},
)

// LoginsTotal counts successful logins.
// Label:
//   - channel: "web" or "mobile"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins, by token channel.",
	},
	[]string{"channel"},
)
