package summarize

import (
	"strings"
	"unicode/utf8"
)

const (
	minReviewLength = 10
	ellipsis        = "..."
)

// isMeaningful reports whether a review passes the minimum-content filter.
func isMeaningful(review string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(review)) > minReviewLength
}

// countMeaningful returns how many reviews pass the minimum-content filter.
func countMeaningful(reviews []string) int {
	n := 0
	for _, r := range reviews {
		if isMeaningful(r) {
			n++
		}
	}
	return n
}

// Preprocess keeps meaningful reviews, collapses whitespace, joins them and
// truncates the result to budget characters followed by an ellipsis.
func Preprocess(reviews []string, budget int) string {
	cleaned := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if !isMeaningful(r) {
			continue
		}
		cleaned = append(cleaned, strings.Join(strings.Fields(r), " "))
	}

	combined := strings.Join(cleaned, " ")
	if budget > 0 && utf8.RuneCountInString(combined) > budget {
		combined = string([]rune(combined)[:budget]) + ellipsis
	}
	return combined
}
