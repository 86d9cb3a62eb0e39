// Package metrics exposes Prometheus counters for the finance service.
// All methods tolerate a nil receiver so instrumentation can be wired
// optionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	activitiesSaved      *prometheus.CounterVec
	activitiesDeleted    prometheus.Counter
	validationFailures   *prometheus.CounterVec
	aggregationFallbacks prometheus.Counter
	aggregationDegraded  prometheus.Counter
	httpDuration         *prometheus.HistogramVec
	statementRebuilds    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activitiesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finanzas_activities_saved_total",
			Help: "Activities created or updated, by type.",
		}, []string{"type"}),
		activitiesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_activities_deleted_total",
			Help: "Activities deleted.",
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finanzas_validation_failures_total",
			Help: "Rejected inputs, by validation code.",
		}, []string{"code"}),
		aggregationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_aggregation_fallbacks_total",
			Help: "Monthly totals computed through the range fallback query.",
		}),
		aggregationDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_aggregation_degraded_total",
			Help: "Monthly totals returned as degraded zeros.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finanzas_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		statementRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finanzas_statement_rebuilds_total",
			Help: "Monthly statement exports rebuilt by the worker.",
		}),
	}

	m.registry.MustRegister(
		m.activitiesSaved,
		m.activitiesDeleted,
		m.validationFailures,
		m.aggregationFallbacks,
		m.aggregationDegraded,
		m.httpDuration,
		m.statementRebuilds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ActivitySaved(activityType string) {
	if m == nil {
		return
	}
	m.activitiesSaved.WithLabelValues(activityType).Inc()
}

func (m *Metrics) ActivityDeleted() {
	if m == nil {
		return
	}
	m.activitiesDeleted.Inc()
}

func (m *Metrics) ValidationFailure(code string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) AggregationFallback() {
	if m == nil {
		return
	}
	m.aggregationFallbacks.Inc()
}

func (m *Metrics) AggregationDegraded() {
	if m == nil {
		return
	}
	m.aggregationDegraded.Inc()
}

func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

func (m *Metrics) StatementRebuilt() {
	if m == nil {
		return
	}
	m.statementRebuilds.Inc()
}
