// Package sentiment turns raw classifier output into bounded sentiment scores
// and maintains per-hotel running means.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/models"
)

// ErrModelNotLoaded is the error text reported when no classifier is available.
const ErrModelNotLoaded = "Model not loaded"

// Classifier scores a text against its label set.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]domain.LabelScore, error)
}

// Normalizer maps classifier output onto the unified score axis.
type Normalizer struct {
	classifier models.Handle[Classifier]
	logger     *slog.Logger
}

// NewNormalizer constructs a Normalizer around a (possibly absent) classifier.
func NewNormalizer(classifier models.Handle[Classifier], logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{classifier: classifier, logger: logger}
}

// ModelName returns the loaded classifier's name, or "" when none is loaded.
func (n *Normalizer) ModelName() string {
	return n.classifier.Name()
}

// Analyze never fails: any classifier problem degrades to a neutral result
// with the cause recorded in Error.
func (n *Normalizer) Analyze(ctx context.Context, text string) (result domain.SentimentResult) {
	classifier, ok := n.classifier.Get()
	if !ok {
		return domain.NeutralSentiment(ErrModelNotLoaded)
	}

	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("sentiment: classifier panicked", slog.Any("panic", r))
			result = domain.NeutralSentiment(fmt.Sprint(r))
		}
	}()

	scores, err := classifier.Classify(ctx, text)
	if err != nil {
		n.logger.Error("sentiment: error analyzing sentiment",
			slog.String("model", n.classifier.Name()),
			slog.String("error", err.Error()))
		return domain.NeutralSentiment(err.Error())
	}

	return Normalize(scores)
}

// Normalize picks the most confident label and rescales it. An empty score set
// yields a neutral result without an error.
func Normalize(scores []domain.LabelScore) domain.SentimentResult {
	if len(scores) == 0 {
		return domain.NeutralSentiment("")
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	label := mapLabel(best.Label)
	confidence := clamp01(best.Score)
	return domain.SentimentResult{
		Label:      label,
		Score:      round3(Rescale(label, confidence)),
		Confidence: round3(confidence),
	}
}

// Rescale projects a label and its confidence onto [0,1] with 0.5 as neutral.
func Rescale(label domain.SentimentLabel, confidence float64) float64 {
	switch label {
	case domain.SentimentPositive:
		return 0.5 + confidence*0.5
	case domain.SentimentNegative:
		return 0.5 - confidence*0.5
	default:
		return 0.5
	}
}

func mapLabel(raw string) domain.SentimentLabel {
	switch domain.SentimentLabel(raw) {
	case domain.SentimentPositive:
		return domain.SentimentPositive
	case domain.SentimentNegative:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
