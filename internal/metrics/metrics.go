// Package metrics holds the Prometheus collectors of the generator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "veoscene"
)

var (
	ComposeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compose_total",
			Help:      "Total number of composed prompts",
		},
		[]string{"scene_type", "duration"},
	)

	// GenerationTotal counts attempts by provider and outcome ("ok" or the error kind).
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_total",
			Help:      "Total number of generation attempts",
		},
		[]string{"provider", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Generation round trip in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider"},
	)

	ValidationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_total",
			Help:      "Total number of validated payloads",
		},
		[]string{"mode", "outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 60, 300},
		},
		[]string{"method", "path"},
	)

	MaintenanceRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "maintenance",
			Name:      "runs_total",
			Help:      "Total number of maintenance job runs",
		},
		[]string{"job", "status"},
	)
)

// Outcome is the label value for a finished operation.
func Outcome(err error, kind string) string {
	if err == nil {
		return "ok"
	}
	if kind == "" {
		return "error"
	}
	return kind
}
