package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

// RemoteClassifier is a text-classification model served by an HTTPClient.
type RemoteClassifier struct {
	client *HTTPClient
	model  string
}

// NewRemoteClassifier binds model to client.
func NewRemoteClassifier(client *HTTPClient, model string) *RemoteClassifier {
	return &RemoteClassifier{client: client, model: model}
}

func (r *RemoteClassifier) Classify(ctx context.Context, text string) ([]domain.LabelScore, error) {
	return r.client.Classify(ctx, r.model, text)
}

// RemoteSummarizer is a summarization model served by an HTTPClient.
type RemoteSummarizer struct {
	client *HTTPClient
	model  string
}

// NewRemoteSummarizer binds model to client.
func NewRemoteSummarizer(client *HTTPClient, model string) *RemoteSummarizer {
	return &RemoteSummarizer{client: client, model: model}
}

func (r *RemoteSummarizer) Summarize(ctx context.Context, text string, params summarize.Params) (string, error) {
	out, err := r.client.Summarize(ctx, r.model, text, params.MaxLength, params.MinLength)
	if err != nil {
		return "", &summarize.InferenceError{Model: r.model, Err: err}
	}
	return out, nil
}

const summaryInstruction = "You summarize hotel guest reviews. Reply with a neutral summary of the recurring praise and complaints, in plain prose."

func summaryPrompt(text string, params summarize.Params) string {
	return fmt.Sprintf("Summarize these hotel reviews in %d to %d words:\n\n%s", params.MinLength, params.MaxLength, text)
}

// OpenAISummarizer summarizes with an OpenAI-compatible chat completion API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer builds a client; an empty baseURL keeps the public API.
func NewOpenAISummarizer(apiKey, baseURL, model string, timeout time.Duration) *OpenAISummarizer {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAISummarizer{client: openai.NewClientWithConfig(config), model: model}
}

// Probe checks that the API serves the model.
func (o *OpenAISummarizer) Probe(ctx context.Context) error {
	_, err := o.client.GetModel(ctx, o.model)
	return err
}

func (o *OpenAISummarizer) Summarize(ctx context.Context, text string, params summarize.Params) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summaryInstruction},
			{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(text, params)},
		},
		MaxTokens:   params.MaxLength * 2,
		Temperature: 0,
	})
	if err != nil {
		return "", &summarize.InferenceError{Model: o.model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// OllamaSummarizer summarizes with a local Ollama server.
type OllamaSummarizer struct {
	client *ollama.Client
	model  string
}

// NewOllamaSummarizer builds a client for the server at host.
func NewOllamaSummarizer(host, model string, timeout time.Duration) (*OllamaSummarizer, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}
	return &OllamaSummarizer{
		client: ollama.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Probe checks that the server has the model pulled.
func (o *OllamaSummarizer) Probe(ctx context.Context) error {
	_, err := o.client.Show(ctx, &ollama.ShowRequest{Model: o.model})
	var status ollama.StatusError
	if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrModelNotFound, o.model)
	}
	return err
}

func (o *OllamaSummarizer) Summarize(ctx context.Context, text string, params summarize.Params) (string, error) {
	stream := false
	req := &ollama.GenerateRequest{
		Model:  o.model,
		System: summaryInstruction,
		Prompt: summaryPrompt(text, params),
		Stream: &stream,
		Options: map[string]any{
			"num_predict": params.MaxLength * 2,
			"temperature": 0,
		},
	}

	var out strings.Builder
	if err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		out.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", &summarize.InferenceError{Model: o.model, Err: err}
	}
	return out.String(), nil
}
