package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the observation service.
type Metrics struct {
	ObservationsSaved   prometheus.Counter
	ObservationsDeleted prometheus.Counter
	SaveErrors          prometheus.Counter
	CriticalityComputed *prometheus.CounterVec // labels: level={1..5}

	// Elevation lookup metrics.
	ElevationRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	ElevationCache       *prometheus.CounterVec // labels: result={hit,miss}
	ElevationAPIDuration prometheus.Histogram
	ElevationEnabled     prometheus.Gauge

	// Feed metrics.
	FeedPublished *prometheus.CounterVec // labels: sink
	FeedErrors    *prometheus.CounterVec // labels: sink
	FeedDropped   prometheus.Counter
	LiveClients   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObservationsSaved,
		m.ObservationsDeleted,
		m.SaveErrors,
		m.CriticalityComputed,
		m.ElevationRequests,
		m.ElevationCache,
		m.ElevationAPIDuration,
		m.ElevationEnabled,
		m.FeedPublished,
		m.FeedErrors,
		m.FeedDropped,
		m.LiveClients,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "observations_saved_total",
			Help:      "Total observations persisted.",
		}),
		ObservationsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "observations_deleted_total",
			Help:      "Total observations deleted.",
		}),
		SaveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "save_errors_total",
			Help:      "Total observation save failures.",
		}),
		CriticalityComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "criticality_computed_total",
			Help:      "Criticality classifications by resulting level.",
		}, []string{"level"}),
		ElevationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "elevation_requests_total",
			Help:      "Elevation API requests by outcome.",
		}, []string{"outcome"}),
		ElevationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "elevation_cache_total",
			Help:      "Elevation cache lookups by result.",
		}, []string{"result"}),
		ElevationAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nivo",
			Name:      "elevation_api_duration_seconds",
			Help:      "Open-Meteo elevation request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ElevationEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nivo",
			Name:      "elevation_enabled",
			Help:      "1 when elevation lookup is enabled, 0 otherwise.",
		}),
		FeedPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "feed_published_total",
			Help:      "Feed events delivered, by sink.",
		}, []string{"sink"}),
		FeedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "feed_errors_total",
			Help:      "Feed events a sink failed to accept after retries, by sink.",
		}, []string{"sink"}),
		FeedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nivo",
			Name:      "feed_dropped_total",
			Help:      "Feed events dropped because the buffer was full.",
		}),
		LiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nivo",
			Name:      "live_clients",
			Help:      "Connected live map clients.",
		}),
	}
}
