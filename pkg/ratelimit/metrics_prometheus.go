package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics exports rate limit outcomes as Prometheus counters,
// labeled by endpoint.
type PrometheusMetrics struct {
	allowed *prometheus.CounterVec
	denied  *prometheus.CounterVec
}

// NewPrometheusMetrics creates and registers the collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		allowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_allowed_total",
			Help: "Requests admitted by the rate limiter.",
		}, []string{"endpoint"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_denied_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.allowed, m.denied)
	return m
}

func (m *PrometheusMetrics) RecordAllowed(endpoint string) {
	m.allowed.WithLabelValues(endpoint).Inc()
}

func (m *PrometheusMetrics) RecordDenied(endpoint string) {
	m.denied.WithLabelValues(endpoint).Inc()
}
