package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's prometheus collectors on a private
// registry so multiple instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	QueueDepth    prometheus.Gauge
	EventsTotal   *prometheus.CounterVec
}

// New creates and registers all pipeline collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_fetches_total",
			Help: "Upstream fetch attempts by source and status.",
		}, []string{"source", "status"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_fetch_duration_seconds",
			Help:    "Upstream fetch latency by source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_cache_hits_total",
			Help: "Reads served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_cache_misses_total",
			Help: "Reads that fell through to an upstream fetch.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipeline_queue_depth",
			Help: "Tasks waiting in the request queue.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_events_total",
			Help: "Events published on the pipeline bus by topic.",
		}, []string{"topic"}),
	}

	m.registry.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.CacheHits,
		m.CacheMisses,
		m.QueueDepth,
		m.EventsTotal,
	)
	return m
}

// Handler exposes the registry for the management router.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
