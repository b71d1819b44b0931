package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/config"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

type stubAnalyzer struct {
	result domain.SentimentResult
}

func (s stubAnalyzer) Analyze(context.Context, string) domain.SentimentResult { return s.result }
func (s stubAnalyzer) ModelName() string                                      { return "stub" }

type stubSummarizer struct{}

func (stubSummarizer) Summarize(context.Context, summarize.Request) domain.SummaryResult {
	return domain.SummaryResult{Summary: summarize.MsgNoReviews}
}
func (stubSummarizer) ModelName() string { return "" }

func newStubServer(result domain.SentimentResult) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.Config{AuthToken: "secret"}, nil, nil, stubAnalyzer{result: result}, stubSummarizer{}, logger)
}

func TestParseListParams(t *testing.T) {
	values, _ := url.ParseQuery("skip= 5 &limit=250")

	params, err := parseListParams(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Skip != 5 {
		t.Fatalf("skip = %d, want 5", params.Skip)
	}
	if params.Limit != 100 {
		t.Fatalf("limit = %d, want capped at 100", params.Limit)
	}

	params, err = parseListParams(url.Values{})
	if err != nil || params.Skip != 0 || params.Limit != 100 {
		t.Fatalf("defaults = %+v, %v", params, err)
	}
}

func TestParseListParams_Invalid(t *testing.T) {
	for _, raw := range []string{"skip=-1", "skip=abc", "limit=0", "limit=ten"} {
		values, _ := url.ParseQuery(raw)
		if _, err := parseListParams(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestVerifyBearer(t *testing.T) {
	srv := &Server{cfg: config.Config{AuthToken: "secret"}}
	cases := []struct {
		header  string
		allowed bool
	}{
		{"Bearer secret", true},
		{"Bearer secret ", true},
		{"Bearer other", false},
		{"secret", false},
		{"", false},
	}
	for _, c := range cases {
		if srv.verifyBearer(c.header) != c.allowed {
			t.Fatalf("verifyBearer(%q) expected %v", c.header, c.allowed)
		}
	}
}

func TestHandleAnalyze(t *testing.T) {
	srv := newStubServer(domain.SentimentResult{Label: domain.SentimentPositive, Score: 0.989, Confidence: 0.979})

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"text":"Lovely stay"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := analyzeResponse{Text: "Lovely stay", Label: "POSITIVE", Score: 0.989, Confidence: 0.979}
	if got != want {
		t.Fatalf("response = %+v, want %+v", got, want)
	}
}

func TestHandleAnalyze_Validation(t *testing.T) {
	srv := newStubServer(domain.SentimentResult{Label: domain.SentimentNeutral, Score: 0.5})

	cases := []struct {
		name string
		body string
		want int
	}{
		{"blank text", `{"text":"   "}`, http.StatusBadRequest},
		{"malformed", `{"text": hi}`, http.StatusUnprocessableEntity},
		{"empty body", ``, http.StatusUnprocessableEntity},
		{"unknown field", `{"text":"hi","lang":"en"}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(c.body)))
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d", rec.Code, c.want)
			}
		})
	}
}

func TestHandleAnalyze_DegradedResultIsServerError(t *testing.T) {
	srv := newStubServer(domain.NeutralSentiment("Model not loaded"))

	rec := httptest.NewRecorder()
	srv.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"text":"it was fine"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var got errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Message != "Sentiment analysis failed: Model not loaded" {
		t.Fatalf("message = %q", got.Message)
	}
}

func TestHandleRoot(t *testing.T) {
	srv := newStubServer(domain.SentimentResult{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		// Only set for cross-origin requests.
		t.Fatalf("unexpected CORS header on same-origin request")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHandleHealthz_NoStore(t *testing.T) {
	srv := newStubServer(domain.SentimentResult{})

	rec := httptest.NewRecorder()
	srv.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSummaryTier(t *testing.T) {
	fallback := summarize.ExtractiveFallback
	model := "t5-small"
	cases := []struct {
		result domain.SummaryResult
		want   string
	}{
		{domain.SummaryResult{}, "message"},
		{domain.SummaryResult{ModelUsed: &fallback}, "extractive"},
		{domain.SummaryResult{ModelUsed: &model}, "model"},
	}
	for _, c := range cases {
		if got := summaryTier(c.result); got != c.want {
			t.Fatalf("summaryTier(%+v) = %s, want %s", c.result, got, c.want)
		}
	}
}

func FuzzParseListParams(f *testing.F) {
	seeds := []string{
		"skip=0&limit=10",
		"limit=abc",
		"skip=-5",
		"limit=100000",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		params, err := parseListParams(values)
		if err != nil {
			return
		}
		if params.Skip < 0 || params.Limit <= 0 || params.Limit > 100 {
			t.Fatalf("out of range params %+v for %q", params, raw)
		}
	})
}

func BenchmarkHandleAnalyze(b *testing.B) {
	srv := newStubServer(domain.SentimentResult{Label: domain.SentimentPositive, Score: 0.9, Confidence: 0.8})
	payload := []byte(`{"text":"The breakfast buffet was excellent."}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		srv.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload)))
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
