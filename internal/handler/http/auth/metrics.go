package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts authentication requests by result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total authentication requests by result",
		},
		[]string{"result"}, // result: success | failure
	)

	// authDuration tracks authentication duration.
	authDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Authentication duration",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	// tokenRejections counts rejected tokens on protected endpoints.
	tokenRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Rejected JWT tokens on protected endpoints by reason",
		},
		[]string{"reason"},
	)
)

// RecordAuthRequest records an authentication attempt outcome.
func RecordAuthRequest(result string) {
	authRequestsTotal.WithLabelValues(result).Inc()
}

// RecordAuthDuration records how long an authentication attempt took.
func RecordAuthDuration(seconds float64) {
	authDuration.Observe(seconds)
}

// RecordTokenRejection records a rejected bearer token.
func RecordTokenRejection(reason string) {
	tokenRejections.WithLabelValues(reason).Inc()
}
