package telemetry

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/krew-solutions/quantum-go/quantum/session"
)

// QueryMetrics counts statements and their durations.
//
// Metrics:
//   - <namespace>_queries_total{kind, outcome}
//   - <namespace>_query_duration_seconds{kind}
type QueryMetrics struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

func NewQueryMetrics(namespace string, registerer prometheus.Registerer) (*QueryMetrics, error) {
	m := &QueryMetrics{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of executed statements",
			},
			[]string{"kind", "outcome"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of executed statements in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
			[]string{"kind"},
		),
	}
	for _, c := range []prometheus.Collector{m.queriesTotal, m.queryDuration} {
		if err := registerer.Register(c); err != nil {
			return nil, errors.Wrap(err, "register query metrics")
		}
	}
	return m, nil
}

func (m *QueryMetrics) OnQueryEnded(e session.QueryEndedEvent) {
	kind := queryKind(e.Query)
	outcome := "ok"
	if e.Err != nil {
		outcome = "error"
	}
	m.queriesTotal.WithLabelValues(kind, outcome).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(e.ResponseTime.Seconds())
}

func queryKind(query string) string {
	word, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	switch kind := strings.ToLower(word); kind {
	case "select", "insert", "update", "delete":
		return kind
	}
	return "other"
}
