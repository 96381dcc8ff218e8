package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Core scheduling metrics.
var (
	authzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions.",
		},
		[]string{"action", "outcome"},
	)

	directoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_lookups_total",
			Help: "Total number of directory gateway lookups.",
		},
		[]string{"op", "status"},
	)

	conflictChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflict_checks_total",
			Help: "Total number of interval conflict checks.",
		},
		[]string{"result"},
	)

	recurrenceOccurrences = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recurrence_occurrences_per_expansion",
			Help:    "Occurrences produced per recurrence expansion.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(authzDecisionsTotal, directoryLookupsTotal, conflictChecksTotal, recurrenceOccurrences)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDecision counts an authorization decision.
func RecordDecision(action, outcome string) {
	authzDecisionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordDirectoryLookup counts a directory gateway call.
func RecordDirectoryLookup(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	directoryLookupsTotal.WithLabelValues(op, status).Inc()
}

// RecordConflictCheck counts a conflict check and its result.
func RecordConflictCheck(found bool) {
	result := "clear"
	if found {
		result = "conflict"
	}
	conflictChecksTotal.WithLabelValues(result).Inc()
}

// ObserveExpansion records the size of one recurrence expansion.
func ObserveExpansion(occurrences int) {
	recurrenceOccurrences.Observe(float64(occurrences))
}
