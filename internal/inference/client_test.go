package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

func newTestClient(t *testing.T, handler http.Handler, maxRetries int) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, Options{
		APIKey:         "hf_test",
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientRejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("models/local", Options{})
	require.Error(t, err)
}

func TestClassifyBatchedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/distilbert-sst2", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var body classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Great stay", body.Inputs)
		assert.True(t, body.Options.WaitForModel)

		_, _ = io.WriteString(w, `[[{"label":"POSITIVE","score":0.98},{"label":"NEGATIVE","score":0.02}]]`)
	}), 0)

	got, err := client.Classify(context.Background(), "distilbert-sst2", "Great stay")
	require.NoError(t, err)
	assert.Equal(t, []domain.LabelScore{
		{Label: "POSITIVE", Score: 0.98},
		{Label: "NEGATIVE", Score: 0.02},
	}, got)
}

func TestClassifyFlatResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"label":"NEGATIVE","score":0.7}]`)
	}), 0)

	got, err := client.Classify(context.Background(), "m", "Cold room")
	require.NoError(t, err)
	assert.Equal(t, []domain.LabelScore{{Label: "NEGATIVE", Score: 0.7}}, got)
}

func TestSummarizeSendsGenerationParameters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body summarizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 100, body.Parameters.MaxLength)
		assert.Equal(t, 20, body.Parameters.MinLength)
		assert.False(t, body.Parameters.DoSample)

		_, _ = io.WriteString(w, `[{"summary_text":"Guests liked the staff."}]`)
	}), 0)

	got, err := client.Summarize(context.Background(), "t5-small", "reviews", 100, 20)
	require.NoError(t, err)
	assert.Equal(t, "Guests liked the staff.", got)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":"Model t5-small is currently loading"}`)
			return
		}
		_, _ = io.WriteString(w, `[{"summary_text":"ok"}]`)
	}), 2)

	got, err := client.Summarize(context.Background(), "t5-small", "reviews", 50, 10)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"upstream unavailable"}`)
	}), 2)

	_, err := client.Classify(context.Background(), "m", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream unavailable")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}), 3)

	_, err := client.Classify(context.Background(), "m", "text")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestProbe(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path == "/models/t5-small" {
			_, _ = io.WriteString(w, `{"id":"t5-small"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}), 0)

	require.NoError(t, client.Probe(context.Background(), "t5-small"))

	err := client.Probe(context.Background(), "facebook/bart-large-cnn")
	assert.True(t, errors.Is(err, ErrModelNotFound), "got %v", err)
}

func TestCanceledContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Classify(ctx, "m", "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteSummarizerReturnsInferenceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), 0)

	_, err := NewRemoteSummarizer(client, "t5-small").Summarize(context.Background(), "text", summarize.Params{MaxLength: 10, MinLength: 5})
	var ie *summarize.InferenceError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "t5-small", ie.Model)
	assert.ErrorIs(t, err, ErrModelNotFound)
}
