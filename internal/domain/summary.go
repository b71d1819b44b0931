package domain

// SummaryResult is the outcome of summarizing a set of reviews. Summary is
// never empty.
type SummaryResult struct {
	Summary          string  `json:"summary"`
	TotalReviews     int     `json:"total_reviews"`
	ProcessedReviews int     `json:"processed_reviews"`
	ModelUsed        *string `json:"model_used,omitempty"`
	InputLength      *int    `json:"input_length,omitempty"`
	Error            *string `json:"error,omitempty"`
	Note             *string `json:"note,omitempty"`
}
