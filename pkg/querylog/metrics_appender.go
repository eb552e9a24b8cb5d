package querylog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsAppender считает запросы и их длительность в Prometheus
type MetricsAppender struct {
	// statementsTotal counts logged statements by kind and status.
	statementsTotal *prometheus.CounterVec

	// statementDuration observes driver round-trip time by kind.
	statementDuration *prometheus.HistogramVec
}

// NewMetricsAppender регистрирует метрики в reg.
// nil означает prometheus.DefaultRegisterer.
func NewMetricsAppender(reg prometheus.Registerer) *MetricsAppender {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsAppender{
		statementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tdtp_sybase_statements_total",
				Help: "Total number of statements compiled by the Sybase adapter",
			},
			[]string{"kind", "status"},
		),
		statementDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tdtp_sybase_statement_duration_seconds",
				Help:    "Execution time of statements sent to the Sybase driver",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
}

// Append обновляет счетчики
func (m *MetricsAppender) Append(ctx context.Context, entry *Entry) error {
	m.statementsTotal.WithLabelValues(string(entry.Kind), string(entry.Status)).Inc()
	if entry.Status != StatusPretend {
		m.statementDuration.WithLabelValues(string(entry.Kind)).Observe(entry.Duration.Seconds())
	}
	return nil
}

// Close - ничего не делает
func (m *MetricsAppender) Close() error {
	return nil
}
