package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters for the live capture path and batch runs. Each
// instance owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	CaptureEvents     *prometheus.CounterVec
	SessionsFinalized *prometheus.CounterVec
	DraftSaves        prometheus.Counter
	DraftFailures     prometheus.Counter
	Flushes           *prometheus.CounterVec
	BufferedSessions  prometheus.Gauge
	DailyRuns         *prometheus.CounterVec
	EventsSkipped     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CaptureEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagetrail_capture_events_total",
			Help: "Raw events handled by the live capture path by type",
		}, []string{"type"}),
		SessionsFinalized: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagetrail_capture_sessions_finalized_total",
			Help: "Scroll session records emitted by the session manager by end reason",
		}, []string{"reason"}),
		DraftSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "usagetrail_capture_draft_saves_total",
			Help: "Session drafts written to the draft store",
		}),
		DraftFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "usagetrail_capture_draft_failures_total",
			Help: "Draft store writes that failed",
		}),
		Flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagetrail_aggregator_flushes_total",
			Help: "Aggregator flush attempts by result",
		}, []string{"result"}),
		BufferedSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usagetrail_aggregator_buffered_sessions",
			Help: "Scroll sessions waiting in the aggregator buffer",
		}),
		DailyRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagetrail_daily_runs_total",
			Help: "Per-date reprocessing runs by result",
		}, []string{"result"}),
		EventsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usagetrail_events_skipped_total",
			Help: "Events skipped or left unrecorded, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
