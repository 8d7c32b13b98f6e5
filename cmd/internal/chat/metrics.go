package chat

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-statement counters and latency for the executor.
type Metrics struct {
	statements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the chat store metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		statements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "messenger",
				Subsystem: "store",
				Name:      "statements_total",
				Help:      "Total CQL statements executed",
			},
			[]string{"statement", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "messenger",
				Subsystem: "store",
				Name:      "statement_duration_seconds",
				Help:      "CQL statement duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"statement"},
		),
	}
}

// Instrument wraps next so every Execute is counted and timed.
func (m *Metrics) Instrument(next Executor) Executor {
	return &instrumentedExecutor{next: next, metrics: m}
}

type instrumentedExecutor struct {
	next    Executor
	metrics *Metrics
}

func (e *instrumentedExecutor) Execute(ctx context.Context, stmt string, params ...any) ([]Row, error) {
	start := time.Now()
	rows, err := e.next.Execute(ctx, stmt, params...)

	label := statementLabel(stmt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.statements.WithLabelValues(label, status).Inc()
	e.metrics.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	return rows, err
}

func statementLabel(stmt string) string {
	switch stmt {
	case stmtSelectCounter:
		return "counter_read"
	case stmtIncrementCounter:
		return "counter_increment"
	case stmtInsertMessage:
		return "message_insert"
	case stmtSelectMessages, stmtSelectMessagesBefore:
		return "message_select"
	case stmtCountMessages, stmtCountMessagesBefore:
		return "message_count"
	case stmtSelectSummary, stmtCheckSummary:
		return "summary_select"
	case stmtInsertSummary:
		return "summary_insert"
	case stmtUpdateSummary:
		return "summary_update"
	case stmtSummariesBySender, stmtSummariesByReceiver:
		return "summary_scan"
	case stmtInsertIdentity:
		return "identity_insert"
	case stmtProbeIdentity:
		return "identity_probe"
	}
	return "other"
}
