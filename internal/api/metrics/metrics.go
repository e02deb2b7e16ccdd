// Package metrics defines and registers the custom Prometheus metrics of the
// car catalog API. HTTP request metrics come from echoprometheus; the
// counters here describe domain outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carsales"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "duplicate", "invalid_credentials", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// ListingMutationsTotal counts successful admin changes to the catalog.
// Label:
//   - operation: "create", "update" or "deactivate"
var ListingMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_mutations_total",
		Help:      "Total number of listing mutations performed by admins.",
	},
	[]string{"operation"},
)

// SearchResultCount observes the filtered total of each public search.
var SearchResultCount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_result_count",
		Help:      "Number of listings matching a public search before pagination.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
	},
)
