// Package metrics exposes decode and load counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	SourcesLoaded  *prometheus.CounterVec
	RecordsDecoded *prometheus.CounterVec
	CorruptFields  *prometheus.CounterVec
	TruncatedLogs  *prometheus.CounterVec
	LogFailures    *prometheus.CounterVec
	RowsStored     *prometheus.CounterVec
	DecodeDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.SourcesLoaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdata",
		Name:      "sources_loaded_total",
		Help:      "TaskData folders loaded, by outcome",
	}, []string{"outcome"})

	m.RecordsDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdata",
		Name:      "records_decoded_total",
		Help:      "Binary log records decoded",
	}, []string{"source"})

	m.CorruptFields = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdata",
		Name:      "corrupt_fields_total",
		Help:      "Log entries skipped as corrupt",
	}, []string{"source"})

	m.TruncatedLogs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdata",
		Name:      "truncated_logs_total",
		Help:      "Logs that ended inside a record",
	}, []string{"source"})

	m.LogFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdata",
		Name:      "log_failures_total",
		Help:      "Logs that could not be opened or read",
	}, []string{"source"})

	m.RowsStored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskdata",
		Name:      "rows_stored_total",
		Help:      "Rows written to the store, by table",
	}, []string{"table"})

	m.DecodeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskdata",
		Name:      "decode_duration_seconds",
		Help:      "Time spent decoding one binary log",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"backend"})

	m.registry.MustRegister(
		m.SourcesLoaded,
		m.RecordsDecoded,
		m.CorruptFields,
		m.TruncatedLogs,
		m.LogFailures,
		m.RowsStored,
		m.DecodeDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SourceLoaded(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.SourcesLoaded.WithLabelValues(outcome).Inc()
}

// LogDecoded records the outcome of one binary log.
func (m *Metrics) LogDecoded(source, backend string, records, warnings int, truncated bool, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.RecordsDecoded.WithLabelValues(source).Add(float64(records))
	m.CorruptFields.WithLabelValues(source).Add(float64(warnings))
	if truncated {
		m.TruncatedLogs.WithLabelValues(source).Inc()
	}
	if err != nil {
		m.LogFailures.WithLabelValues(source).Inc()
	}
	m.DecodeDuration.WithLabelValues(backend).Observe(took.Seconds())
}

func (m *Metrics) Stored(table string, rows int) {
	if m == nil {
		return
	}
	m.RowsStored.WithLabelValues(table).Add(float64(rows))
}
