// Package metrics exposes session lifecycle signals on a per-instance Prometheus registry.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrms"

// Side effects that may fail without failing the session operation.
const (
	EffectCache   = "cache"
	EffectPublish = "publish"
)

type Metrics struct {
	registry         *prometheus.Registry
	sessionsStarted  *prometheus.CounterVec
	sessionsEnded    *prometheus.CounterVec
	sessionDuration  *prometheus.HistogramVec
	sessionConflicts *prometheus.CounterVec
	uptimeUpdates    prometheus.Counter
	sideEffectErrors *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Sessions opened, by identity type.",
		}, []string{"identity_type"}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "Sessions closed, by identity type.",
		}, []string{"identity_type"}),
		sessionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "duration_hours",
			Help:      "Length of closed sessions in hours.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 12, 24, 48},
		}, []string{"identity_type"}),
		sessionConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "conflicts_total",
			Help:      "Rejected lifecycle calls, by reason.",
		}, []string{"reason"}),
		uptimeUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uptime",
			Name:      "updates_total",
			Help:      "Closed sessions folded into weekly uptime.",
		}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "side_effect_errors_total",
			Help:      "Cache or publish failures that did not fail the operation.",
		}, []string{"effect"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsStarted,
		m.sessionsEnded,
		m.sessionDuration,
		m.sessionConflicts,
		m.uptimeUpdates,
		m.sideEffectErrors,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SessionStarted(identityType string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(identityType).Inc()
}

func (m *Metrics) SessionEnded(identityType string, hours float64) {
	if m == nil {
		return
	}
	m.sessionsEnded.WithLabelValues(identityType).Inc()
	m.sessionDuration.WithLabelValues(identityType).Observe(hours)
}

func (m *Metrics) SessionConflict(reason string) {
	if m == nil {
		return
	}
	m.sessionConflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) UptimeUpdated() {
	if m == nil {
		return
	}
	m.uptimeUpdates.Inc()
}

func (m *Metrics) SideEffectFailed(effect string) {
	if m == nil {
		return
	}
	m.sideEffectErrors.WithLabelValues(effect).Inc()
}
