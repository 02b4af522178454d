// Package metrics defines the Prometheus metric collectors used across the
// engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	DocumentsIndexedTotal  prometheus.Counter
	ConjunctionsIndexed    prometheus.Counter
	BuildDuration          prometheus.Histogram
	RetrieveDuration       *prometheus.HistogramVec
	RetrieveMatchesCount   prometheus.Histogram
	PostingListEntries     *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beindex_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beindex_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "beindex_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		DocumentsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "beindex_documents_indexed_total",
				Help: "Total documents folded into the index by the last Build call.",
			},
		),
		ConjunctionsIndexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "beindex_conjunctions_indexed_total",
				Help: "Total conjunctions folded into the index by the last Build call.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "beindex_build_duration_seconds",
				Help:    "Wall-clock time spent in Build.",
				Buckets: prometheus.DefBuckets,
			},
		),
		RetrieveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beindex_retrieve_duration_seconds",
				Help:    "Wall-clock time spent in one Retrieve call.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
			},
			[]string{"outcome"},
		),
		RetrieveMatchesCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "beindex_retrieve_matches_count",
				Help:    "Number of documents matched per Retrieve call.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		PostingListEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "beindex_posting_list_entries",
				Help: "Total posting list entries per conjunction size, after the last Build call.",
			},
			[]string{"size"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocumentsIndexedTotal,
		m.ConjunctionsIndexed,
		m.BuildDuration,
		m.RetrieveDuration,
		m.RetrieveMatchesCount,
		m.PostingListEntries,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
