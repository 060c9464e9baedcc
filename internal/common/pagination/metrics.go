package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Listing metrics. Pages are bucketed so the label set stays small even
// when a crawler walks deep into the article list.
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_list_requests_total",
			Help: "Article listing requests by status and page bucket",
		},
		[]string{"status", "page_range"},
	)

	durationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "article_list_duration_seconds",
			Help:    "Article listing duration by layer",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)

	totalCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_listed_total",
			Help: "Row count reported by the most recent listing COUNT query",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_list_errors_total",
			Help: "Article listing errors by type",
		},
		[]string{"type"},
	)
)

// RecordRequest counts one listing request.
func RecordRequest(statusCode, page int) {
	requestsTotal.WithLabelValues(strconv.Itoa(statusCode), pageRange(page)).Inc()
}

// RecordDuration observes how long one layer of the listing path took.
func RecordDuration(operation string, seconds float64) {
	durationSeconds.WithLabelValues(operation).Observe(seconds)
}

// UpdateTotalCount records the total row count of the latest listing.
func UpdateTotalCount(count int64) {
	totalCount.Set(float64(count))
}

// RecordError counts a listing failure. Type is "validation" or
// "database".
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

func pageRange(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
