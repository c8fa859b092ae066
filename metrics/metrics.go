// Package metrics exposes Prometheus collectors for call handling.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/room4-2/OrderDesk/messages"
)

// Recorder counts turns and call outcomes
type Recorder struct {
	registry     *prometheus.Registry
	turns        *prometheus.CounterVec
	dispositions *prometheus.CounterVec
	calls        *prometheus.CounterVec
}

// NewRecorder registers collectors on a private registry. activeSessions
// is sampled on every scrape.
func NewRecorder(activeSessions func() int) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "turns_total",
			Help:      "Caller turns handled, by stage and reason.",
		}, []string{"stage", "reason"}),
		dispositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "dispositions_total",
			Help:      "Calls finished, by disposition.",
		}, []string{"disposition"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "call_events_total",
			Help:      "Call lifecycle events, by type.",
		}, []string{"type"}),
	}

	r.registry.MustRegister(r.turns, r.dispositions, r.calls)
	if activeSessions != nil {
		r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "orderdesk",
			Name:      "active_sessions",
			Help:      "Calls with live session state.",
		}, func() float64 { return float64(activeSessions()) }))
	}
	return r
}

// Observe records one engine event
func (r *Recorder) Observe(ev messages.Event) {
	r.calls.WithLabelValues(ev.Type).Inc()

	if ev.Type != messages.TypeTurn || ev.Action == nil {
		return
	}
	r.turns.WithLabelValues(ev.Stage, string(ev.Action.Reason)).Inc()
	if ev.Action.Hangup && ev.Action.Reason != messages.ReasonReplayed && ev.Action.Reason != messages.ReasonStale {
		r.dispositions.WithLabelValues(string(ev.Action.Disposition)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
