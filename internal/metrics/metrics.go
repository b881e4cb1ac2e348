// Package metrics exposes Prometheus instrumentation for imports, reports and
// the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector. Each instance owns a private registry so
// tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	importsTotal      *prometheus.CounterVec
	importRows        *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	reportPublishes   *prometheus.CounterVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	publishedMessages *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_imports_total",
				Help: "Ledger imports by result.",
			},
			[]string{"result"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_import_rows_total",
				Help: "Imported data rows by outcome.",
			},
			[]string{"outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tesoreria_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
		reportPublishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_report_publishes_total",
				Help: "Monthly report publications by status.",
			},
			[]string{"status"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_external_errors_total",
				Help: "Errors returned by external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_cache_hits_total",
				Help: "Cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_cache_misses_total",
				Help: "Cache misses.",
			},
			[]string{"cache"},
		),
		publishedMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tesoreria_amqp_messages_total",
				Help: "AMQP messages by type and status.",
			},
			[]string{"type", "status"},
		),
	}
}

// RecordImport counts one import run and its rows. A nil receiver is a no-op,
// as for every method below.
func (m *Metrics) RecordImport(result string, imported, skipped, unclassified int) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(result).Inc()
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("skipped").Add(float64(skipped))
	m.importRows.WithLabelValues("unclassified").Add(float64(unclassified))
}

func (m *Metrics) RecordRequestDuration(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}

func (m *Metrics) IncrReportPublish(status string) {
	if m == nil {
		return
	}
	m.reportPublishes.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrExternalError(service string) {
	if m == nil {
		return
	}
	m.externalErrors.WithLabelValues(service).Inc()
}

func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrMessage(msgType, status string) {
	if m == nil {
		return
	}
	m.publishedMessages.WithLabelValues(msgType, status).Inc()
}
