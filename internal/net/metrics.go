package net

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the broadcast hub. Each hub
// owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Subscribers     prometheus.Gauge
	BroadcastsTotal prometheus.Counter
	BroadcastBytes  prometheus.Counter
	BroadcastErrors prometheus.Counter
	TickSeconds     prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.Subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flysim",
		Subsystem: "hub",
		Name:      "subscribers",
		Help:      "Currently connected snapshot subscribers.",
	})
	m.BroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flysim",
		Subsystem: "hub",
		Name:      "broadcasts_total",
		Help:      "World snapshots broadcast to subscribers.",
	})
	m.BroadcastBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flysim",
		Subsystem: "hub",
		Name:      "broadcast_bytes_total",
		Help:      "Total serialized snapshot bytes written.",
	})
	m.BroadcastErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flysim",
		Subsystem: "hub",
		Name:      "broadcast_errors_total",
		Help:      "Failed snapshot writes, each of which drops the subscriber.",
	})
	m.TickSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flysim",
		Subsystem: "sim",
		Name:      "tick_seconds",
		Help:      "Wall-clock duration of one world step.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
	})
	m.registry.MustRegister(m.Subscribers, m.BroadcastsTotal, m.BroadcastBytes, m.BroadcastErrors, m.TickSeconds)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
