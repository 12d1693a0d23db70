package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tkingovr/apigate/api"
)

// Metrics holds all Prometheus metrics for the gate
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	preflightTotal   prometheus.Counter
	blockedTotal     *prometheus.CounterVec
	suppressedTotal  *prometheus.CounterVec
	decisionDuration prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a new metrics instance on its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apigate_requests_total",
				Help: "Total number of classified requests by verdict and matching rule",
			},
			[]string{"whitelisted", "rule"},
		),

		preflightTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "apigate_preflight_total",
				Help: "Total number of CORS preflight requests answered",
			},
		),

		blockedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apigate_blocked_total",
				Help: "Total number of requests rejected by a security check",
			},
			[]string{"check"},
		),

		suppressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apigate_suppressed_checks_total",
				Help: "Total number of security checks skipped for whitelisted requests",
			},
			[]string{"check"},
		),

		decisionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "apigate_decision_duration_seconds",
				Help:    "Time spent in the filter chain per request",
				Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.requestsTotal,
		m.preflightTotal,
		m.blockedTotal,
		m.suppressedTotal,
		m.decisionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordDecision records a classification verdict
func (m *Metrics) RecordDecision(d api.Decision) {
	m.requestsTotal.WithLabelValues(strconv.FormatBool(d.Whitelisted), string(d.Rule)).Inc()
}

// RecordPreflight records an answered preflight
func (m *Metrics) RecordPreflight() {
	m.preflightTotal.Inc()
}

// RecordBlocked records a rejection by the named check
func (m *Metrics) RecordBlocked(check string) {
	m.blockedTotal.WithLabelValues(check).Inc()
}

// RecordSuppressed records a check skipped for a whitelisted request
func (m *Metrics) RecordSuppressed(check string) {
	m.suppressedTotal.WithLabelValues(check).Inc()
}

// RecordDuration records the time spent deciding a request
func (m *Metrics) RecordDuration(d time.Duration) {
	m.decisionDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
