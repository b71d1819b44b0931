package domain

// SentimentLabel is the normalized polarity of a text.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// SentimentResult is the normalized output of sentiment analysis. Score lives on
// a single axis where 0.5 is neutral; Confidence is the classifier's certainty
// in the winning label.
type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
	Error      string         `json:"error,omitempty"`
}

// NeutralSentiment returns the degraded result used whenever classification
// cannot produce an answer.
func NeutralSentiment(errMsg string) SentimentResult {
	return SentimentResult{
		Label:      SentimentNeutral,
		Score:      0.5,
		Confidence: 0,
		Error:      errMsg,
	}
}

// LabelScore is one raw label/probability pair produced by a classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
