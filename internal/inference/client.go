// Package inference talks to model backends: a Hugging Face compatible
// inference endpoint, OpenAI and Ollama.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
)

// ErrModelNotFound is returned when the endpoint does not serve the model.
var ErrModelNotFound = errors.New("inference: model not found")

const userAgent = "hotel-review-sentiment/1.0"

// Options tunes the HTTP client.
type Options struct {
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	InitialBackoff    time.Duration
	Logger            *slog.Logger
}

// HTTPClient calls a Hugging Face compatible inference API:
// GET /models/{model} to probe, POST /models/{model} to run.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewHTTPClient constructs a new HTTP-backed inference client.
func NewHTTPClient(baseURL string, opts Options) (*HTTPClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse inference url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse inference url: %q is not absolute", baseURL)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	backoff := opts.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL: parsed,
		apiKey:  opts.APIKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(opts.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger,
	}, nil
}

// Probe checks that the endpoint serves model.
func (c *HTTPClient) Probe(ctx context.Context, model string) error {
	resp, err := c.do(ctx, http.MethodGet, model, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, model)
	default:
		return upstreamError(resp)
	}
}

type classifyRequest struct {
	Inputs  string         `json:"inputs"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Classify runs a text-classification model and returns every label score.
func (c *HTTPClient) Classify(ctx context.Context, model, text string) ([]domain.LabelScore, error) {
	var raw json.RawMessage
	if err := c.postJSON(ctx, model, classifyRequest{Inputs: text, Options: requestOptions{WaitForModel: true}}, &raw); err != nil {
		return nil, err
	}
	return decodeLabelScores(raw)
}

// decodeLabelScores accepts both the batched ([[...]]) and flat ([...]) shapes.
func decodeLabelScores(raw json.RawMessage) ([]domain.LabelScore, error) {
	var batched [][]domain.LabelScore
	if err := json.Unmarshal(raw, &batched); err == nil {
		if len(batched) == 0 {
			return nil, nil
		}
		return batched[0], nil
	}
	var flat []domain.LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decode classification response: %w", err)
	}
	return flat, nil
}

type summarizeRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters summarizeParams `json:"parameters"`
	Options    requestOptions  `json:"options"`
}

type summarizeParams struct {
	MaxLength                 int  `json:"max_length"`
	MinLength                 int  `json:"min_length"`
	DoSample                  bool `json:"do_sample"`
	CleanUpTokenizationSpaces bool `json:"clean_up_tokenization_spaces"`
}

type summaryPayload struct {
	SummaryText string `json:"summary_text"`
}

// Summarize runs a summarization model with greedy decoding.
func (c *HTTPClient) Summarize(ctx context.Context, model, text string, maxLength, minLength int) (string, error) {
	req := summarizeRequest{
		Inputs: text,
		Parameters: summarizeParams{
			MaxLength:                 maxLength,
			MinLength:                 minLength,
			DoSample:                  false,
			CleanUpTokenizationSpaces: true,
		},
		Options: requestOptions{WaitForModel: true},
	}

	var payload []summaryPayload
	if err := c.postJSON(ctx, model, req, &payload); err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", nil
	}
	return payload[0].SummaryText, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, model string, input, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal inference request: %w", err)
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodPost, model, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, model)
	default:
		return upstreamError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(output); err != nil {
		return fmt.Errorf("decode inference response: %w", err)
	}
	c.logger.Debug("inference: request completed",
		slog.String("model", model),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// do sends the request, retrying transport errors and 5xx responses with
// exponential backoff. The returned response is never a 5xx unless retries
// were exhausted.
func (c *HTTPClient) do(ctx context.Context, method, model string, body []byte) (*http.Response, error) {
	endpoint := c.baseURL.JoinPath("models", model)
	backoff := c.backoff

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err == nil && (resp.StatusCode < 500 || attempt == c.maxRetries) {
			return resp, nil
		}
		if err == nil {
			lastErr = upstreamError(resp)
			resp.Body.Close()
		} else {
			lastErr = err
		}
		if attempt == c.maxRetries {
			break
		}

		c.logger.Warn("inference: request failed, will retry",
			slog.String("model", model),
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("inference: request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func upstreamError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("inference: upstream returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("inference: upstream returned %d", resp.StatusCode)
}
