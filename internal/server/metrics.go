package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors exported on /metrics.
type Metrics struct {
	// counters
	Requests    *prometheus.CounterVec
	Analyses    *prometheus.CounterVec
	Resolutions *prometheus.CounterVec
	Completions prometheus.Counter

	// histograms
	RequestDuration  prometheus.Histogram
	AnalysisDuration prometheus.Histogram

	handler http.Handler
}

// NewMetrics registers the collectors on reg.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		Analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Equipment analyses by outcome (saved, conflict, unsaved, error)",
		}, []string{"result"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_resolutions_total",
			Help:      "Duplicate conflicts resolved, by resolution",
		}, []string{"resolution"}),
		Completions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workouts_completed_total",
			Help:      "The total number of recorded workout completions",
		}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent waiting for the analysis service",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
}

// NewTestMetrics returns metrics on a private registry.
func NewTestMetrics() *Metrics {
	return NewMetrics("vizofit", prometheus.NewRegistry())
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler { return m.handler }
