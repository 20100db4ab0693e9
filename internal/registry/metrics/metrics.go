// Package metrics registers the registry's domain-level Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry operation instruments.
type Metrics struct {
	DocumentsCreated   prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	SelectionsReplaced prometheus.Counter
	IndexSize          prometheus.Gauge
}

// New creates and registers the registry metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		DocumentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quire_documents_created_total",
			Help: "Total number of documents created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quire_status_transitions_total",
			Help: "Total status transitions by target status",
		}, []string{"status"}),
		SelectionsReplaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quire_selections_replaced_total",
			Help: "Total selection replacement operations",
		}),
		IndexSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "quire_index_size",
			Help: "Number of documents in the index record",
		}),
	}
}
