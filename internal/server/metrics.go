package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "moonkv"

// Metrics holds the server's prometheus instruments. A nil *Metrics records nothing
type Metrics struct {
	registry *prometheus.Registry

	commands         *prometheus.CounterVec
	errors           *prometheus.CounterVec
	evictions        prometheus.Counter
	connections      prometheus.Gauge
	connectionsTotal prometheus.Counter
	throttled        prometheus.Counter
}

// NewMetrics creates the instruments and registers them in registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command name",
		}, []string{"cmd"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Error replies sent, by kind",
		}, []string{"kind"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "expired_keys_total",
			Help:      "Keys removed because their TTL had passed",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connected_clients",
			Help:      "Currently open client connections",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_received_total",
			Help:      "Client connections accepted",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "throttled_commands_total",
			Help:      "Commands delayed by the per-connection rate limit",
		}),
	}

	registry.MustRegister(
		m.commands,
		m.errors,
		m.evictions,
		m.connections,
		m.connectionsTotal,
		m.throttled,
	)

	return m
}

// WatchKeyspace exposes the number of resident keys, read from keys on every scrape
func (m *Metrics) WatchKeyspace(keys func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "keys",
		Help:      "Keys currently held, including expired keys not evicted yet",
	}, func() float64 {
		return float64(keys())
	}))
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) commandExecuted(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) errorReply(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) evicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) connectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
	m.connectionsTotal.Inc()
}

func (m *Metrics) connectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) commandThrottled() {
	if m == nil {
		return
	}
	m.throttled.Inc()
}
