// Package metrics exposes Prometheus instrumentation for the check engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksTotal counts completed checks by kind and classified status.
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackmon_checks_total",
			Help: "Total number of completed service checks",
		},
		[]string{"kind", "status"},
	)

	// CheckDuration tracks wall-clock check latency.
	CheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackmon_check_duration_seconds",
			Help:    "Service check duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// BatchesTotal counts dispatched batches.
	BatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stackmon_batches_total",
			Help: "Total number of dispatched check batches",
		},
	)
)
