// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	MessagesReceived *prometheus.CounterVec
	MessageErrors    *prometheus.CounterVec
	MessageLatency   prometheus.Histogram
	AttackRows       prometheus.Counter
	CancelledRows    prometheus.Counter
	GarbageRows      prometheus.Counter
	MatchesStarted   prometheus.Counter
	MatchesFinished  prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of open connections",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received, by message type",
		}, []string{"type"}),
		MessageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_errors_total",
			Help:      "Messages answered with an error, by message type",
		}, []string{"type"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		AttackRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attack_rows_total",
			Help:      "Cleared rows sent to the opponent as pending garbage",
		}),
		CancelledRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancelled_rows_total",
			Help:      "Pending garbage answered by clearing rows",
		}),
		GarbageRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "garbage_rows_total",
			Help:      "Garbage rows materialized after their deadline",
		}),
		MatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_started_total",
			Help:      "Sessions formed by picking a waiting player",
		}),
		MatchesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Sessions ended by a reported loss",
		}),
	}
}

// Monitor owns a private registry so several instances can coexist, e.g. in
// tests.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:   NewMetrics(namespace),
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}
	m.registry.MustRegister(
		m.metrics.OnlinePlayers,
		m.metrics.MessagesReceived,
		m.metrics.MessageErrors,
		m.metrics.MessageLatency,
		m.metrics.AttackRows,
		m.metrics.CancelledRows,
		m.metrics.GarbageRows,
		m.metrics.MatchesStarted,
		m.metrics.MatchesFinished,
		collectors.NewGoCollector(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the monitor was created",
		}, func() float64 { return time.Since(m.startTime).Seconds() }),
	)
	return m
}

// RegisterGauge exposes a value computed at scrape time, such as the number
// of waiting players.
func (m *Monitor) RegisterGauge(name, help string, f func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, f))
}

// Handler serves the registry in the Prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) IncMessagesReceived(msgType string) {
	m.metrics.MessagesReceived.WithLabelValues(msgType).Inc()
}

func (m *Monitor) IncMessageErrors(msgType string) {
	m.metrics.MessageErrors.WithLabelValues(msgType).Inc()
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

// ObserveDrop records the outcome of one drop.
func (m *Monitor) ObserveDrop(attack, cancelled, garbage int) {
	m.metrics.AttackRows.Add(float64(attack))
	m.metrics.CancelledRows.Add(float64(cancelled))
	m.metrics.GarbageRows.Add(float64(garbage))
}

func (m *Monitor) IncMatchesStarted() {
	m.metrics.MatchesStarted.Inc()
}

func (m *Monitor) IncMatchesFinished() {
	m.metrics.MatchesFinished.Inc()
}
