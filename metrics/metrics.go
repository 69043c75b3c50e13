package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks developer creation, mirror append failures and HTTP latency.
type Metrics struct {
	DevelopersCreated    prometheus.Counter
	MirrorAppendFailures prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DevelopersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "developers_created_total",
			Help: "Total number of developers written to the relational store",
		}),
		MirrorAppendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "developers_mirror_append_failures_total",
			Help: "Creates whose JSON mirror append failed after the store insert succeeded",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "developers_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method, route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementDevelopersCreated() {
	m.DevelopersCreated.Inc()
}

func (m *Metrics) IncrementMirrorAppendFailures() {
	m.MirrorAppendFailures.Inc()
}

// ObserveRequest records a request that started at start.
func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
