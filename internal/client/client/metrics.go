package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK           = "ok"
	outcomeUnauthorized = "unauthorized"
	outcomeServerError  = "server_error"
	outcomeDecoding     = "decoding"
	outcomeNoResponse   = "no_response"
	outcomeInvalid      = "invalid_request"
)

// Metrics records gateway traffic. Routes are path templates, not concrete
// paths, to keep label cardinality bounded.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the gateway collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoposts",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "API calls by method, route and outcome.",
		}, []string{"method", "route", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geoposts",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(method, route, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, outcome).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}
