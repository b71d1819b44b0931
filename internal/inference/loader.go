package inference

import (
	"context"
	"log/slog"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/config"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/models"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/sentiment"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

// Loader resolves the configured backends into model handles.
type Loader struct {
	cfg    config.Config
	client *HTTPClient
	logger *slog.Logger
}

// NewLoader builds the shared inference HTTP client from cfg.
func NewLoader(cfg config.Config, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := NewHTTPClient(cfg.InferenceURL, Options{
		APIKey:            cfg.InferenceAPIKey,
		Timeout:           cfg.InferenceTimeout(),
		RequestsPerSecond: cfg.InferenceRPS,
		MaxRetries:        cfg.InferenceMaxRetries,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	return &Loader{cfg: cfg, client: client, logger: logger}, nil
}

// Classifier loads the first working sentiment backend, or Unavailable.
func (l *Loader) Classifier(ctx context.Context) models.Handle[sentiment.Classifier] {
	return models.Load(ctx, "sentiment", l.ClassifierCandidates(), l.logger)
}

// Summarizer loads the first working summary model, or Unavailable.
func (l *Loader) Summarizer(ctx context.Context) models.Handle[summarize.Model] {
	if l.cfg.SummaryBackend == config.BackendNone {
		l.logger.Info("models: summarization backend disabled, using extractive summaries")
		return models.Unavailable[summarize.Model]()
	}
	return models.Load(ctx, "summarizer", l.SummarizerCandidates(), l.logger)
}

// ClassifierCandidates lists sentiment backends in configured order.
func (l *Loader) ClassifierCandidates() []models.Candidate[sentiment.Classifier] {
	var out []models.Candidate[sentiment.Classifier]
	for _, backend := range l.cfg.SentimentBackends {
		switch backend {
		case config.BackendHuggingFace:
			name := l.cfg.SentimentModel
			out = append(out, models.Candidate[sentiment.Classifier]{
				Name: name,
				Load: func(ctx context.Context) (sentiment.Classifier, error) {
					if err := l.probe(ctx, func(ctx context.Context) error { return l.client.Probe(ctx, name) }); err != nil {
						return nil, err
					}
					return NewRemoteClassifier(l.client, name), nil
				},
			})
		case config.BackendVader:
			out = append(out, models.Candidate[sentiment.Classifier]{
				Name:  sentiment.VaderModelName,
				Light: true,
				Load: func(context.Context) (sentiment.Classifier, error) {
					return sentiment.NewVaderClassifier(), nil
				},
			})
		}
	}
	return out
}

// SummarizerCandidates lists SUMMARY_MODELS for the configured backend.
func (l *Loader) SummarizerCandidates() []models.Candidate[summarize.Model] {
	var out []models.Candidate[summarize.Model]
	for _, name := range l.cfg.SummaryModels {
		name := name
		candidate := models.Candidate[summarize.Model]{Name: name, Light: l.cfg.IsLightModel(name)}

		switch l.cfg.SummaryBackend {
		case config.BackendHuggingFace:
			candidate.Load = func(ctx context.Context) (summarize.Model, error) {
				if err := l.probe(ctx, func(ctx context.Context) error { return l.client.Probe(ctx, name) }); err != nil {
					return nil, err
				}
				return NewRemoteSummarizer(l.client, name), nil
			}
		case config.BackendOpenAI:
			candidate.Load = func(ctx context.Context) (summarize.Model, error) {
				s := NewOpenAISummarizer(l.cfg.OpenAIAPIKey, l.cfg.OpenAIBaseURL, name, l.cfg.InferenceTimeout())
				if err := l.probe(ctx, s.Probe); err != nil {
					return nil, err
				}
				return s, nil
			}
		case config.BackendOllama:
			candidate.Load = func(ctx context.Context) (summarize.Model, error) {
				s, err := NewOllamaSummarizer(l.cfg.OllamaHost, name, l.cfg.InferenceTimeout())
				if err != nil {
					return nil, err
				}
				if err := l.probe(ctx, s.Probe); err != nil {
					return nil, err
				}
				return s, nil
			}
		default:
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func (l *Loader) probe(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.InferenceTimeout())
	defer cancel()
	return fn(ctx)
}
