// Package metrics provides Prometheus metrics for the review service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotelreviews"

var (
	// SentimentTotal counts sentiment analyses by label and outcome.
	SentimentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentiment_analyses_total",
			Help:      "Total number of sentiment analyses",
		},
		[]string{"label", "outcome"},
	)

	// SummariesTotal counts summaries by the tier that produced them.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Total number of review summaries",
		},
		[]string{"tier"},
	)

	// SummaryDuration measures end-to-end summarization time.
	SummaryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Duration of summarization requests in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tier"},
	)

	// ReviewsAppended counts reviews stored with their aggregate update.
	ReviewsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_appended_total",
			Help:      "Total number of reviews appended",
		},
	)

	// HTTPRequests counts handled requests by route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)
)

// Summary tiers.
const (
	TierModel      = "model"
	TierExtractive = "extractive"
	TierMessage    = "message"
)

// RecordSentiment records one analysis; a non-empty errMsg marks it degraded.
func RecordSentiment(label, errMsg string) {
	outcome := "ok"
	if errMsg != "" {
		outcome = "degraded"
	}
	SentimentTotal.WithLabelValues(label, outcome).Inc()
}

// RecordSummary records a finished summarization.
func RecordSummary(tier string, elapsed time.Duration) {
	SummariesTotal.WithLabelValues(tier).Inc()
	SummaryDuration.WithLabelValues(tier).Observe(elapsed.Seconds())
}

// RecordRequest records a handled HTTP request.
func RecordRequest(route string, status int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
