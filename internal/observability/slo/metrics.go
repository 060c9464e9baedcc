// Package slo tracks whether the API is meeting its service level
// objectives. A Tracker tallies request outcomes in-process; a periodic job
// publishes the derived ratios as gauges. Latency percentiles are not
// computed here — they come from Prometheus recording rules over
// http_request_duration_seconds.
package slo

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the application.
const (
	// AvailabilitySLO defines the target uptime percentage (99.9% = 43
	// minutes downtime per month).
	AvailabilitySLO = 99.9

	// ErrorRateSLO defines the maximum acceptable error rate as a ratio
	// (0.1% = 0.001).
	ErrorRateSLO = 0.001
)

var (
	// SLOAvailability tracks the availability ratio (0-1) over the last
	// publish window, calculated as (total - 5xx) / total.
	SLOAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_availability_ratio",
			Help: "Availability ratio (0-1) over the last window, target: 0.999",
		},
	)

	// SLOErrorRate tracks the error rate ratio (0-1) over the last
	// publish window, calculated as 5xx / total.
	SLOErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "Error rate ratio (0-1) over the last window, target: 0.001",
		},
	)
)

// Tracker tallies request outcomes between publishes. Safe for concurrent
// use by the HTTP middleware.
type Tracker struct {
	total  atomic.Int64
	errors atomic.Int64
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records one finished request. Only 5xx responses count against
// availability; client errors are the caller's fault.
func (t *Tracker) Observe(statusCode int) {
	t.total.Add(1)
	if statusCode >= 500 {
		t.errors.Add(1)
	}
}

// Publish computes the ratios for the window since the previous call,
// resets the tally, and sets the gauges. A window with no traffic leaves
// the gauges untouched rather than reporting a meaningless 0/0.
func (t *Tracker) Publish() {
	total := t.total.Swap(0)
	errs := t.errors.Swap(0)
	if total == 0 {
		return
	}
	SLOAvailability.Set(float64(total-errs) / float64(total))
	SLOErrorRate.Set(float64(errs) / float64(total))
}
