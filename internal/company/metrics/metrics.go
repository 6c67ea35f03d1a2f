package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the company module.
// Tracks reconcile throughput, creation counts, and enrichment degradation.
type Metrics struct {
	CompaniesCreated    prometheus.Counter
	EnrichmentFallbacks prometheus.Counter
	ReconcileDuration   prometheus.Histogram
	ReconcileBatchSize  prometheus.Histogram
}

// New creates a new Metrics instance registered on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all company module metrics on reg. Tests pass a fresh
// registry so each suite observes independent counters.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CompaniesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "orgbook_companies_created_total",
			Help: "Total number of companies created by reconciliation",
		}),
		EnrichmentFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "orgbook_enrichment_fallbacks_total",
			Help: "Total number of companies created with a fallback name because enrichment failed",
		}),
		ReconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "orgbook_reconcile_duration_seconds",
			Help:    "Duration of Reconcile operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ReconcileBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "orgbook_reconcile_batch_size",
			Help:    "Number of candidates per Reconcile call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

// IncrementCompaniesCreated records n successful company creations.
func (m *Metrics) IncrementCompaniesCreated(n int) {
	m.CompaniesCreated.Add(float64(n))
}

// IncrementEnrichmentFallbacks records a company created without enrichment data.
func (m *Metrics) IncrementEnrichmentFallbacks() {
	m.EnrichmentFallbacks.Inc()
}

// ObserveReconcile records the duration of a Reconcile operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReconcile(start time.Time) {
	m.ReconcileDuration.Observe(time.Since(start).Seconds())
}

// ObserveBatchSize records the candidate count of a Reconcile call.
func (m *Metrics) ObserveBatchSize(n int) {
	m.ReconcileBatchSize.Observe(float64(n))
}
