package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks audit trail health: entries written by outcome, entries that
// could not be stored, and entries dropped before reaching the stream.
type Metrics struct {
	Recorded      *prometheus.CounterVec
	WriteFailures prometheus.Counter
	StreamDropped prometheus.Counter
}

// New registers the audit metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the audit metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Recorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visitorreg_audit_entries_total",
			Help: "Audit entries written, by action and result",
		}, []string{"action", "result"}),
		WriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_audit_write_failures_total",
			Help: "Audit entries that could not be stored",
		}),
		StreamDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitorreg_audit_stream_dropped_total",
			Help: "Stored audit entries not forwarded to the stream because the outbox was full",
		}),
	}
}

func (m *Metrics) IncrementRecorded(action, result string) {
	m.Recorded.WithLabelValues(action, result).Inc()
}

func (m *Metrics) IncrementWriteFailure() {
	m.WriteFailures.Inc()
}

func (m *Metrics) IncrementStreamDropped() {
	m.StreamDropped.Inc()
}
