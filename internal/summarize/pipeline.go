// Package summarize condenses hotel reviews into a short summary. A loaded
// abstractive model is tried first; the extractive heuristic covers a missing
// model and failed inference, so a usable summary is always returned.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/models"
)

// ExtractiveFallback is reported in ModelUsed when the extractive tier produced
// the summary.
const ExtractiveFallback = "extractive_fallback"

// Pipeline sentinel messages.
const (
	MsgNoMeaningfulReviews = "No meaningful reviews available to summarize."
	MsgInsufficientContent = "Insufficient review content to generate a summary."
	MsgEmptyModelOutput    = "Unable to generate summary."
	MsgGenerationFailed    = "Error generating summary. Please try again later."
	noteNoModel            = "No summarization model is loaded; an extractive summary was returned."
	fallbackErrorPrefix    = "AI summarization failed, used fallback: "
)

// Request length defaults, in model tokens.
const (
	DefaultMaxLength = 100
	DefaultMinLength = 20
)

// Params are the generation limits handed to a model.
type Params struct {
	MaxLength int
	MinLength int
}

// Model is an abstractive summarizer.
type Model interface {
	Summarize(ctx context.Context, text string, params Params) (string, error)
}

// InferenceError is the failure outcome of a model invocation.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Options holds the pipeline thresholds.
type Options struct {
	// MaxInputChars is the preprocessed text budget for regular models.
	MaxInputChars int
	// LightMaxInputChars is the budget for light models.
	LightMaxInputChars int
	// MinModelInput is the shortest preprocessed text worth sending to a model.
	MinModelInput int
	// PrimarySentences is K when no model is loaded.
	PrimarySentences int
	// RetrySentences is K after a model failure.
	RetrySentences int
	// LightMaxLength and LightMinLength cap request lengths for light models.
	LightMaxLength int
	LightMinLength int
}

// DefaultOptions returns the canonical thresholds.
func DefaultOptions() Options {
	return Options{
		MaxInputChars:      800,
		LightMaxInputChars: 600,
		MinModelInput:      50,
		PrimarySentences:   3,
		RetrySentences:     2,
		LightMaxLength:     100,
		LightMinLength:     20,
	}
}

// Request is a single summarization call.
type Request struct {
	Reviews   []string
	MaxLength int
	MinLength int
}

// Pipeline is safe for concurrent use; it holds no per-request state.
type Pipeline struct {
	model   models.Handle[Model]
	opts    Options
	logger  *slog.Logger
	extract func(reviews []string, k int) string
}

// NewPipeline constructs a Pipeline around a (possibly absent) model.
func NewPipeline(model models.Handle[Model], opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		model:   model,
		opts:    opts,
		logger:  logger,
		extract: Extract,
	}
}

// ModelName returns the loaded model's name, or "" when none is loaded.
func (p *Pipeline) ModelName() string {
	return p.model.Name()
}

// Summarize never fails; every failure mode is reported through the Error and
// Note fields of the result.
func (p *Pipeline) Summarize(ctx context.Context, req Request) domain.SummaryResult {
	total := len(req.Reviews)
	if total == 0 {
		return domain.SummaryResult{Summary: MsgNoReviews}
	}

	processed := countMeaningful(req.Reviews)
	if processed == 0 {
		return domain.SummaryResult{Summary: MsgNoMeaningfulReviews, TotalReviews: total}
	}

	model, ok := p.model.Get()
	if !ok {
		summary, err := p.safeExtract(req.Reviews, p.opts.PrimarySentences)
		if err != nil {
			return p.retryExtractive(req.Reviews, total, processed, err)
		}
		return domain.SummaryResult{
			Summary:          summary,
			TotalReviews:     total,
			ProcessedReviews: processed,
			ModelUsed:        ptr(ExtractiveFallback),
			Note:             ptr(noteNoModel),
		}
	}

	text := Preprocess(req.Reviews, p.inputBudget())
	if utf8.RuneCountInString(strings.TrimSpace(text)) < p.opts.MinModelInput {
		return domain.SummaryResult{Summary: MsgInsufficientContent, TotalReviews: total}
	}

	out := p.invoke(ctx, model, text, p.params(req))
	if out.err != nil {
		p.logger.Error("summarize: error generating summary",
			slog.String("model", out.err.Model),
			slog.String("error", out.err.Error()))
		return p.retryExtractive(req.Reviews, total, processed, out.err)
	}

	summary := strings.TrimSpace(out.summary)
	if summary == "" {
		summary = MsgEmptyModelOutput
	}
	return domain.SummaryResult{
		Summary:          summary,
		TotalReviews:     total,
		ProcessedReviews: processed,
		InputLength:      ptr(utf8.RuneCountInString(text)),
		ModelUsed:        ptr(p.model.Name()),
	}
}

func (p *Pipeline) retryExtractive(reviews []string, total, processed int, cause error) domain.SummaryResult {
	summary, err := p.safeExtract(reviews, p.opts.RetrySentences)
	if err != nil {
		p.logger.Error("summarize: extractive fallback failed",
			slog.String("cause", cause.Error()),
			slog.String("error", err.Error()))
		return domain.SummaryResult{
			Summary:      MsgGenerationFailed,
			TotalReviews: total,
			Error:        ptr(cause.Error()),
		}
	}
	return domain.SummaryResult{
		Summary:          summary,
		TotalReviews:     total,
		ProcessedReviews: processed,
		ModelUsed:        ptr(ExtractiveFallback),
		Error:            ptr(fallbackErrorPrefix + cause.Error()),
	}
}

type outcome struct {
	summary string
	err     *InferenceError
}

// invoke is the model boundary: errors and panics both become an
// InferenceError outcome.
func (p *Pipeline) invoke(ctx context.Context, model Model, text string, params Params) (out outcome) {
	name := p.model.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: &InferenceError{Model: name, Err: fmt.Errorf("model panicked: %v", r)}}
		}
	}()

	summary, err := model.Summarize(ctx, text, params)
	if err != nil {
		var ie *InferenceError
		if errors.As(err, &ie) {
			return outcome{err: ie}
		}
		return outcome{err: &InferenceError{Model: name, Err: err}}
	}

	p.logger.Debug("summarize: model summary generated",
		slog.String("model", name),
		slog.Int("input_length", utf8.RuneCountInString(text)),
		slog.Duration("elapsed", time.Since(start)))
	return outcome{summary: summary}
}

func (p *Pipeline) safeExtract(reviews []string, k int) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractive summary panicked: %v", r)
		}
	}()
	return p.extract(reviews, k), nil
}

func (p *Pipeline) inputBudget() int {
	if p.model.Light() {
		return p.opts.LightMaxInputChars
	}
	return p.opts.MaxInputChars
}

func (p *Pipeline) params(req Request) Params {
	params := Params{MaxLength: req.MaxLength, MinLength: req.MinLength}
	if params.MaxLength <= 0 {
		params.MaxLength = DefaultMaxLength
	}
	if params.MinLength <= 0 {
		params.MinLength = DefaultMinLength
	}
	if p.model.Light() {
		params.MaxLength = min(params.MaxLength, p.opts.LightMaxLength)
		params.MinLength = min(params.MinLength, p.opts.LightMinLength)
	}
	if params.MinLength > params.MaxLength {
		params.MinLength = params.MaxLength
	}
	return params
}

func ptr[T any](v T) *T {
	return &v
}
