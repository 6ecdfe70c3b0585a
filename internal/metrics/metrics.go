// Package metrics holds Prometheus collectors for the ingest pipeline
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Error type label values
const (
	ErrorUnrecognized = "unrecognized"
	ErrorAmbiguous    = "ambiguous"
	ErrorReader       = "reader"
	ErrorHandler      = "handler"
)

// Ingest holds counters for log ingestion, labelled by server
type Ingest struct {
	lines       *prometheus.CounterVec // By server
	entries     *prometheus.CounterVec // By server and kind
	errors      *prometheus.CounterVec // By server and error_type
	dumpedCvars *prometheus.CounterVec // By server
	active      prometheus.Gauge
}

// NewIngest creates ingest metrics and registers them with reg.
// A nil reg returns nil, which disables recording.
func NewIngest(reg prometheus.Registerer) (*Ingest, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Ingest{
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minictrl",
			Subsystem: "ingest",
			Name:      "lines_total",
			Help:      "Total number of log lines read",
		}, []string{"server"}),

		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minictrl",
			Subsystem: "ingest",
			Name:      "entries_total",
			Help:      "Total number of decoded log entries emitted",
		}, []string{"server", "kind"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minictrl",
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingest errors",
		}, []string{"server", "error_type"}), // error_type: unrecognized, ambiguous, reader, handler

		dumpedCvars: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minictrl",
			Subsystem: "ingest",
			Name:      "dumped_cvars_total",
			Help:      "Total number of cvars collected from cvar dumps",
		}, []string{"server"}),

		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minictrl",
			Subsystem: "ingest",
			Name:      "active_servers",
			Help:      "Number of servers currently being ingested",
		}),
	}

	for _, c := range []prometheus.Collector{m.lines, m.entries, m.errors, m.dumpedCvars, m.active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordLine counts one line read from a server's log
func (m *Ingest) RecordLine(server string) {
	if m == nil {
		return
	}
	m.lines.WithLabelValues(server).Inc()
}

// RecordEntry counts one emitted entry
func (m *Ingest) RecordEntry(server, kind string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(server, kind).Inc()
}

// RecordCvars counts cvars delivered in a completed dump
func (m *Ingest) RecordCvars(server string, n int) {
	if m == nil {
		return
	}
	m.dumpedCvars.WithLabelValues(server).Add(float64(n))
}

// RecordError counts one ingest error
func (m *Ingest) RecordError(server, errorType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(server, errorType).Inc()
}

// ServerStarted increments the active server gauge
func (m *Ingest) ServerStarted() {
	if m == nil {
		return
	}
	m.active.Inc()
}

// ServerStopped decrements the active server gauge
func (m *Ingest) ServerStopped() {
	if m == nil {
		return
	}
	m.active.Dec()
}
