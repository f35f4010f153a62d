// Package metrics exposes Prometheus collectors for the valuation service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	valuations      *prometheus.CounterVec
	scalingWarnings prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "impact",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		valuations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact",
			Name:      "valuations_total",
			Help:      "Valuations computed by kind and outcome.",
		}, []string{"kind", "outcome"}),
		scalingWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "impact",
			Name:      "scaling_warnings_total",
			Help:      "Realism warnings emitted by scaled projections.",
		}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.valuations,
		m.scalingWarnings,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveValuation counts one ROI or scaling computation. kind is "roi" or
// "scaling"; outcome is "ok" or "error".
func (m *Metrics) ObserveValuation(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.valuations.WithLabelValues(kind, outcome).Inc()
}

// AddScalingWarnings counts realism warnings.
func (m *Metrics) AddScalingWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.scalingWarnings.Add(float64(n))
}
