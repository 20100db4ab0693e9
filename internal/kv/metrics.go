package kv

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "quire_kv_op_duration_ms",
	Help:    "Latency of key-value operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
}, []string{"backend", "op"})

// observe records one operation's latency. Backends call it via defer.
func observe(backend, op string, start time.Time) {
	opDurationMs.WithLabelValues(backend, op).
		Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
