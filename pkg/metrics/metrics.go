// Package metrics defines the Prometheus metric collectors used by the
// dictionary service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	LookupsTotal         *prometheus.CounterVec
	LookupLatency        *prometheus.HistogramVec
	LookupResultsCount   prometheus.Histogram
	BuildsTotal          *prometheus.CounterVec
	BuildSkippedTotal    prometheus.Counter
	EntriesIndexed       prometheus.Gauge
	TermsIndexed         prometheus.Gauge
	GateWaitSeconds      *prometheus.HistogramVec
	LockTimeoutsTotal    *prometheus.CounterVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dictionary_lookups_total",
				Help: "Total dictionary lookups by outcome (hit, zero_result, rejected, error).",
			},
			[]string{"outcome"},
		),
		LookupLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dictionary_lookup_latency_seconds",
				Help:    "Dictionary lookup latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		LookupResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dictionary_lookup_results_count",
				Help:    "Number of definitions returned per lookup.",
				Buckets: []float64{0, 1, 2, 5, 10, 25},
			},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dictionary_builds_total",
				Help: "Total dictionary build operations by status.",
			},
			[]string{"status"},
		),
		BuildSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dictionary_build_skipped_entries_total",
				Help: "Total entries skipped during builds.",
			},
		),
		EntriesIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_entries_indexed",
				Help: "Number of live entries in the store.",
			},
		),
		TermsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_terms_indexed",
				Help: "Number of distinct terms in the inverted index.",
			},
		),
		GateWaitSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dictionary_gate_wait_seconds",
				Help:    "Time spent waiting to acquire the concurrency gate.",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
			},
			[]string{"mode"},
		),
		LockTimeoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dictionary_lock_timeouts_total",
				Help: "Total gate acquisitions that timed out, by mode.",
			},
			[]string{"mode"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of definition cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of definition cache misses.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.LookupsTotal,
		m.LookupLatency,
		m.LookupResultsCount,
		m.BuildsTotal,
		m.BuildSkippedTotal,
		m.EntriesIndexed,
		m.TermsIndexed,
		m.GateWaitSeconds,
		m.LockTimeoutsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
