package summarize

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Fixed extractive messages.
const (
	MsgNoReviews         = "No reviews available to summarize."
	MsgNoSentences       = "Unable to extract meaningful sentences from reviews."
	MsgNoExtractiveTopK  = "Unable to generate a meaningful summary."
	extractiveMinReview  = 20
	extractiveMinSegment = 15
	preferredMinLength   = 30
	preferredMaxLength   = 150
	lexiconWeight        = 2
)

var (
	positiveWords = wordSet("great", "excellent", "amazing", "wonderful", "fantastic", "perfect", "love", "beautiful", "clean", "friendly")
	negativeWords = wordSet("terrible", "awful", "bad", "poor", "disappointing", "dirty", "rude", "worst", "horrible", "noisy")
)

type scoredSentence struct {
	text  string
	score int
}

// Extract builds a summary from the k highest scoring review sentences.
// Opinionated sentences of either polarity outrank neutral filler, and ties
// keep the order in which sentences were first seen. Output depends only on
// reviews and k.
func Extract(reviews []string, k int) string {
	if len(reviews) == 0 {
		return MsgNoReviews
	}

	candidates := splitCandidates(reviews)
	if len(candidates) == 0 {
		return MsgNoSentences
	}

	scored := make([]scoredSentence, 0, len(candidates))
	for _, sentence := range candidates {
		scored = append(scored, scoredSentence{text: sentence, score: scoreSentence(sentence)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if k > len(scored) {
		k = len(scored)
	}
	if k <= 0 {
		return MsgNoExtractiveTopK
	}
	top := make([]string, 0, k)
	for _, s := range scored[:k] {
		top = append(top, s.text)
	}
	return strings.Join(top, " ")
}

func splitCandidates(reviews []string) []string {
	var sentences []string
	for _, review := range reviews {
		if utf8.RuneCountInString(strings.TrimSpace(review)) <= extractiveMinReview {
			continue
		}
		normalized := strings.NewReplacer("!", ".", "?", ".").Replace(review)
		for _, fragment := range strings.Split(normalized, ".") {
			fragment = strings.TrimSpace(fragment)
			if utf8.RuneCountInString(fragment) > extractiveMinSegment {
				sentences = append(sentences, fragment)
			}
		}
	}
	return sentences
}

func scoreSentence(sentence string) int {
	words := wordSet(strings.Fields(strings.ToLower(sentence))...)

	score := 0
	for w := range words {
		if _, ok := positiveWords[w]; ok {
			score += lexiconWeight
		}
		if _, ok := negativeWords[w]; ok {
			score += lexiconWeight
		}
	}

	if n := utf8.RuneCountInString(sentence); n >= preferredMinLength && n <= preferredMaxLength {
		score++
	}
	return score
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
