// Package metrics exposes wire command and session counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhruvsoni1802/wiredriver/internal/status"
)

const namespace = "wiredriver"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	sessionsCreated *prometheus.CounterVec
	sessionsClosed  *prometheus.CounterVec
	creationRetries *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Wire commands sent, by HTTP method and resulting status kind.",
		}, []string{"method", "kind"}),
		commandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Round trip time of wire commands.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		sessionsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions opened, by provider.",
		}, []string{"provider"}),
		sessionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Sessions quit, by provider.",
		}, []string{"provider"}),
		creationRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_creation_retries_total",
			Help:      "Session creation attempts retried because the provider was over its parallel limit.",
		}, []string{"provider"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently tracked by the manager.",
		}),
	}
}

func providerLabel(provider string) string {
	if provider == "" {
		return "direct"
	}
	return provider
}

// ObserveCommand records one wire command. An empty kind means the command never got a status.
func (m *Metrics) ObserveCommand(method string, kind status.Kind, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := string(kind)
	if label == "" {
		label = "transport_error"
	}
	m.commands.WithLabelValues(method, label).Inc()
	m.commandDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSessionCreated(provider string) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(providerLabel(provider)).Inc()
}

func (m *Metrics) RecordSessionClosed(provider string) {
	if m == nil {
		return
	}
	m.sessionsClosed.WithLabelValues(providerLabel(provider)).Inc()
}

func (m *Metrics) RecordRetry(provider string) {
	if m == nil {
		return
	}
	m.creationRetries.WithLabelValues(providerLabel(provider)).Inc()
}

// SetActiveSessions sets the tracked session gauge
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
