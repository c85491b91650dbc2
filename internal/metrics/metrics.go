// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neptune_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neptune_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"route"})

	EngineLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neptune_engine_loads_total",
		Help: "Engine load attempts by backend and result",
	}, []string{"backend", "result"})

	EngineLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neptune_engine_load_duration_seconds",
		Help:    "Time spent loading an engine",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"backend"})

	EnginesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neptune_engines_loaded",
		Help: "Number of engines currently cached",
	})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neptune_generation_duration_seconds",
		Help:    "Generation latency by backend",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"backend", "mode"})

	GeneratedTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neptune_generated_tokens_total",
		Help: "Tokens produced by backend",
	}, []string{"backend"})

	GenerationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neptune_generation_errors_total",
		Help: "Failed generations by backend",
	}, []string{"backend"})

	StreamFragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neptune_stream_fragments_total",
		Help: "Text fragments delivered to streaming clients",
	})

	StreamTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neptune_stream_timeouts_total",
		Help: "Streams abandoned after the inactivity window",
	})

	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neptune_streams_active",
		Help: "Streams currently open",
	})
)

// RecordGeneration records one finished generation.
func RecordGeneration(backend, mode string, seconds float64, tokens int, err error) {
	GenerationDuration.WithLabelValues(backend, mode).Observe(seconds)
	if err != nil {
		GenerationErrorsTotal.WithLabelValues(backend).Inc()
		return
	}
	GeneratedTokensTotal.WithLabelValues(backend).Add(float64(tokens))
}
