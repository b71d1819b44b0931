package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSentimentOutcome(t *testing.T) {
	ok := testutil.ToFloat64(SentimentTotal.WithLabelValues("POSITIVE", "ok"))
	degraded := testutil.ToFloat64(SentimentTotal.WithLabelValues("NEUTRAL", "degraded"))

	RecordSentiment("POSITIVE", "")
	RecordSentiment("NEUTRAL", "Model not loaded")

	assert.Equal(t, ok+1, testutil.ToFloat64(SentimentTotal.WithLabelValues("POSITIVE", "ok")))
	assert.Equal(t, degraded+1, testutil.ToFloat64(SentimentTotal.WithLabelValues("NEUTRAL", "degraded")))
}

func TestRecordSummary(t *testing.T) {
	before := testutil.ToFloat64(SummariesTotal.WithLabelValues(TierExtractive))
	RecordSummary(TierExtractive, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(SummariesTotal.WithLabelValues(TierExtractive)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordRequest("/hotels", http.StatusOK)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hotelreviews_http_requests_total{route="/hotels",status="200"}`)
}

func TestPoolCollectorWithoutPool(t *testing.T) {
	c := NewPoolCollector(func() *pgxpool.Stat { return nil })
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}
