package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records collection page reads.
type CatalogMetrics struct {
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewCatalogMetrics registers the collection metrics on reg. A nil reg yields
// a no-op recorder.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collection_fetch_duration_seconds",
		Help:    "Duration of collection page queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "sort"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_items_served_total",
		Help: "Variants returned by collection page queries.",
	}, []string{"collection"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_fetch_failures_total",
		Help: "Collection page queries that failed.",
	}, []string{"collection"})
	reg.MustRegister(duration, items, failures)
	return &CatalogMetrics{duration: duration, items: items, failures: failures}
}

// ObserveFetch records one successful page read.
func (c *CatalogMetrics) ObserveFetch(collection, sort string, elapsed time.Duration, served int) {
	if c == nil || c.duration == nil {
		return
	}
	collection = normalizeLabel(collection)
	c.duration.WithLabelValues(collection, normalizeLabel(sort)).Observe(elapsed.Seconds())
	c.items.WithLabelValues(collection).Add(float64(served))
}

func (c *CatalogMetrics) IncFailure(collection string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(collection)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
