// Package metrics defines the Prometheus metrics exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts finished analysis requests by outcome code.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beetseer_analyses_total",
			Help: "Total number of analysis requests by outcome",
		},
		[]string{"outcome"},
	)

	SourceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beetseer_source_lookups_total",
			Help: "Total number of metadata source lookups by source and result",
		},
		[]string{"source", "result"}, // result: found, not_found, unavailable
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beetseer_generation_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"variant"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beetseer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beetseer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)
)

// Source lookup results.
const (
	ResultFound       = "found"
	ResultNotFound    = "not_found"
	ResultUnavailable = "unavailable"
)
