package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	queryDuration      prometheus.Histogram
	queriesTotal       prometheus.Counter
	queryFailures      prometheus.Counter
	rejectedStatements prometheus.Counter
	introspectionTotal *prometheus.CounterVec
	connectedDialect   *prometheus.GaugeVec
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dbgateway"
	}

	m := &Metrics{
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of executed statements in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		queriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of statements submitted for execution",
		}),
		queryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_failures_total",
			Help:      "Total number of statements the backend rejected or failed",
		}),
		rejectedStatements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_statements_total",
			Help:      "Total number of statements blocked by the safety policy",
		}),
		introspectionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "introspection_calls_total",
			Help:      "Total number of introspection calls by operation",
		}, []string{"operation"}),
		connectedDialect: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "Whether a backend is connected (1) by dialect",
		}, []string{"dialect"}),
	}

	prometheus.MustRegister(
		m.queryDuration,
		m.queriesTotal,
		m.queryFailures,
		m.rejectedStatements,
		m.introspectionTotal,
		m.connectedDialect,
	)

	return m
}

func (m *Metrics) RecordQuery(duration time.Duration, err error) {
	m.queriesTotal.Inc()
	m.queryDuration.Observe(duration.Seconds())
	if err != nil {
		m.queryFailures.Inc()
	}
}

func (m *Metrics) RecordRejected() {
	m.rejectedStatements.Inc()
}

func (m *Metrics) RecordIntrospection(operation string) {
	m.introspectionTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetConnected(dialect string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	m.connectedDialect.WithLabelValues(dialect).Set(v)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
