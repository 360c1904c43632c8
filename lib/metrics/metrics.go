package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors of bulk imports and the count cache
type Metrics struct {
	DocsImportedTotal prometheus.Counter
	DocsFailedTotal   prometheus.Counter
	InvalidItemsTotal prometheus.Counter
	ImportDuration    prometheus.Histogram
	IndexFlushesTotal *prometheus.CounterVec
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsImportedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xs_docs_imported_total",
				Help: "Total documents submitted by bulk imports.",
			},
		),
		DocsFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xs_docs_failed_total",
				Help: "Total documents a bulk import failed to submit.",
			},
		),
		InvalidItemsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xs_import_invalid_items_total",
				Help: "Total malformed items skipped by data sources.",
			},
		),
		ImportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xs_import_duration_seconds",
				Help:    "Duration of bulk imports in seconds.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
		),
		IndexFlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xs_index_flushes_total",
				Help: "Total index flush requests by status (ok, busy, error).",
			},
			[]string{"status"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xs_count_cache_hits_total",
				Help: "Total count cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xs_count_cache_misses_total",
				Help: "Total count cache misses.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.DocsImportedTotal,
			m.DocsFailedTotal,
			m.InvalidItemsTotal,
			m.ImportDuration,
			m.IndexFlushesTotal,
			m.CacheHitsTotal,
			m.CacheMissesTotal,
		)
	}
	return m
}

// Default returns the collectors registered with the default prometheus
// registry
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}
