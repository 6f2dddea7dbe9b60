package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reconcileOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reconcile_outcomes_total",
			Help: "Reconciliation outcomes by type.",
		},
		[]string{"outcome"},
	)
	normalizeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_normalize_outcomes_total",
			Help: "Normalization outcomes by type.",
		},
		[]string{"outcome"},
	)
	orderLineOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_order_line_outcomes_total",
			Help: "Order webhook line item outcomes by status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(reconcileOutcomes)
	prometheus.MustRegister(normalizeOutcomes)
	prometheus.MustRegister(orderLineOutcomes)
}

// RecordReconcile adds one reconciliation run's counts.
func RecordReconcile(created, updated, skipped, failed int) {
	reconcileOutcomes.WithLabelValues("created").Add(float64(created))
	reconcileOutcomes.WithLabelValues("updated").Add(float64(updated))
	reconcileOutcomes.WithLabelValues("skipped").Add(float64(skipped))
	reconcileOutcomes.WithLabelValues("failed").Add(float64(failed))
}

// RecordNormalize adds one normalization pass's counts.
func RecordNormalize(normalized, failed int) {
	normalizeOutcomes.WithLabelValues("normalized").Add(float64(normalized))
	normalizeOutcomes.WithLabelValues("failed").Add(float64(failed))
}

// RecordOrderLine counts one processed order line item.
func RecordOrderLine(status string) {
	orderLineOutcomes.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
