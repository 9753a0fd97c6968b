package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_dashboard"

// Refresh cycle outcomes, used as the "outcome" label.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds the Prometheus collectors for refresh cycles and the HTTP surface.
type Metrics struct {
	RefreshCycles   *prometheus.CounterVec // labels: outcome={ok,empty,error}
	RefreshDuration prometheus.Histogram
	FetchDuration   prometheus.Histogram
	RowsDropped     prometheus.Counter
	EventsRendered  prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // labels: route, status
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full fetch-transform-render cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the feed request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Feed records dropped for unparseable coordinates.",
		}),
		EventsRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_rendered",
			Help:      "Number of events in the most recent refresh cycle.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshCycles,
		m.RefreshDuration,
		m.FetchDuration,
		m.RowsDropped,
		m.EventsRendered,
		m.HTTPRequests,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
