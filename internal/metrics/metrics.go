// Package metrics exposes the Prometheus collectors of the server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "detailing"

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	mutations      *prometheus.CounterVec
	recomputes     prometheus.Histogram
	snapshotErrors *prometheus.CounterVec
	liveSessions   prometheus.Gauge
}

// New creates the collectors and registers them together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Store mutations by operation and result.",
		}, []string{"operation", "result"}),
		recomputes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_recompute_seconds",
			Help:      "Time spent rebuilding the dashboard after a snapshot change.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}),
		snapshotErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_errors_total",
			Help:      "Subscription errors by collection.",
		}, []string{"collection"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Connected live dashboard streams.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.mutations, m.recomputes, m.snapshotErrors, m.liveSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Mutation counts a write path outcome; operation is e.g. "edit_appointment".
func (m *Metrics) Mutation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveRecompute(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.recomputes.Observe(elapsed.Seconds())
}

func (m *Metrics) SnapshotError(collection string) {
	if m == nil {
		return
	}
	m.snapshotErrors.WithLabelValues(collection).Inc()
}

func (m *Metrics) LiveSessionOpened() {
	if m != nil {
		m.liveSessions.Inc()
	}
}

func (m *Metrics) LiveSessionClosed() {
	if m != nil {
		m.liveSessions.Dec()
	}
}
