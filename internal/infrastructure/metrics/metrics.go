// Package metrics exposes Prometheus collectors for the HTTP API and the
// settlement engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tourledger"

// Outcome labels for settlement runs.
const (
	OutcomeProfit   = "profit"
	OutcomeLoss     = "loss"
	OutcomeRejected = "rejected"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	settlements     *prometheus.CounterVec
	payeeGroups     prometheus.Histogram
}

// New creates collectors on a fresh registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "runs_total",
			Help:      "Settlement runs by kind (report, preview) and outcome.",
		}, []string{"kind", "outcome"}),
		payeeGroups: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "payee_groups",
			Help:      "Printed payee groups per bill.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.settlements,
		m.payeeGroups,
	)
	return m
}

// Registry returns the registry collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveSettlement records one settlement run.
func (m *Metrics) ObserveSettlement(kind, outcome string) {
	m.settlements.WithLabelValues(kind, outcome).Inc()
}

// ObserveBill records the number of payee groups a bill printed.
func (m *Metrics) ObserveBill(groups int) {
	m.payeeGroups.Observe(float64(groups))
}

// RegisterPoolStats exposes database pool usage as gauges read at scrape time.
func (m *Metrics) RegisterPoolStats(stats func() (total, acquired, idle int32)) {
	gauge := func(name, help string, pick func(total, acquired, idle int32) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(stats()))
		})
	}
	m.registry.MustRegister(
		gauge("total_conns", "Open connections.", func(t, _, _ int32) int32 { return t }),
		gauge("acquired_conns", "Connections in use.", func(_, a, _ int32) int32 { return a }),
		gauge("idle_conns", "Idle connections.", func(_, _, i int32) int32 { return i }),
	)
}
