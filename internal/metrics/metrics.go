// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle modes.
const (
	ModeCached = "cached"
	ModeFresh  = "fresh"
)

// Alert results.
const (
	AlertSent   = "sent"
	AlertFailed = "failed"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HealthOK = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_health_ok",
			Help: "Health status (1 ok, 0 not)",
		},
	)

	Cycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulatory_cycles_total",
			Help: "Regulatory check cycles by mode (cached or fresh)",
		},
		[]string{"mode"},
	)

	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulatory_fetch_failures_total",
			Help: "Sources skipped because fetching failed",
		},
		[]string{"source"},
	)

	Updates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulatory_updates_total",
			Help: "Regulatory updates produced by impact level",
		},
		[]string{"level"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "regulatory_cycle_duration_seconds",
			Help:    "Duration of fresh regulatory check cycles",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	Alerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulatory_alerts_total",
			Help: "Critical alert deliveries by result",
		},
		[]string{"result"},
	)
)
