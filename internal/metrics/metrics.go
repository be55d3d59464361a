// Package metrics defines the Prometheus instrumentation for the engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	PagesCrawled    prometheus.Counter
	FetchErrors     prometheus.Counter
	LinksDiscovered prometheus.Counter
	QueriesTotal    prometheus.Counter
	QueryDuration   prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PagesCrawled: factory.NewCounter(prometheus.CounterOpts{
			Name: "minisearch_pages_crawled_total",
			Help: "Pages successfully fetched, parsed and stored.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "minisearch_fetch_errors_total",
			Help: "URLs dropped after robots denial or exhausted retries.",
		}),
		LinksDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "minisearch_links_discovered_total",
			Help: "Outlinks recorded into the link graph.",
		}),
		QueriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "minisearch_queries_total",
			Help: "Search queries served.",
		}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "minisearch_query_duration_seconds",
			Help:    "Search query latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
