package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for the API server.
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	savingsPercent   prometheus.Histogram
}

// NewMetrics creates the server metrics on a private registry so repeated
// construction (tests, embedding) never double-registers collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalbox_analyses_total",
				Help: "Total number of analysis requests by detected framework and outcome",
			},
			[]string{"framework", "outcome"},
		),

		analysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalbox_analysis_duration_seconds",
				Help:    "Wall time of complete analyses",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),

		savingsPercent: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalbox_savings_percent",
				Help:    "Projected cost savings percentage per analysis",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
