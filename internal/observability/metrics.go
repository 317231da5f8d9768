package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the overlay service.
type Metrics struct {
	// Transport gateway metrics.
	BackendRequests *prometheus.CounterVec   // labels: source, outcome={success,http_error,transport_error,malformed}
	BackendDuration *prometheus.HistogramVec // labels: source

	// Layer lifecycle metrics.
	Reloads         *prometheus.CounterVec // labels: layer, result={displayed,hidden,error,stale,noop}
	RecordsReceived *prometheus.CounterVec // labels: layer
	RecordsSkipped  *prometheus.CounterVec // labels: layer
	LayerArtifacts  *prometheus.GaugeVec   // labels: layer
	Notifications   *prometheus.CounterVec // labels: source

	// Point query metrics.
	PointQueries *prometheus.CounterVec // labels: outcome={success,error}
	GeocodeCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them with reg. One-shot
// commands pass a private registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := NewMetricsForTesting()

	reg.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.Reloads,
		m.RecordsReceived,
		m.RecordsSkipped,
		m.LayerArtifacts,
		m.Notifications,
		m.PointQueries,
		m.GeocodeCache,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "backend_requests_total",
			Help:      "Backend requests by source and outcome.",
		}, []string{"source", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hazard_map",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "layer_reloads_total",
			Help:      "Layer reloads by layer and result.",
		}, []string{"layer", "result"}),
		RecordsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "records_received_total",
			Help:      "Records received from the backend per layer.",
		}, []string{"layer"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "records_skipped_total",
			Help:      "Records skipped for missing coordinates or malformed shape.",
		}, []string{"layer"}),
		LayerArtifacts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hazard_map",
			Name:      "layer_artifacts",
			Help:      "Artifacts currently drawn per layer.",
		}, []string{"layer"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "notifications_total",
			Help:      "User-facing error notifications raised per source.",
		}, []string{"source"}),
		PointQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "point_queries_total",
			Help:      "Weather point queries by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}
