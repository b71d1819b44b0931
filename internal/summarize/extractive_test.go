package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRanksOpinionatedSentences(t *testing.T) {
	reviews := []string{
		"Absolutely fantastic stay, clean rooms!",
		"Terrible noisy stay, rude staff.",
		"ok",
	}
	got := Extract(reviews, 3)
	assert.Equal(t, "Terrible noisy stay, rude staff Absolutely fantastic stay, clean rooms", got)
}

func TestExtractMessages(t *testing.T) {
	tests := []struct {
		name    string
		reviews []string
		k       int
		want    string
	}{
		{"no reviews", nil, 3, MsgNoReviews},
		{"all reviews too short", []string{"short review here", "   tiny   ", ""}, 3, MsgNoSentences},
		{"only short fragments", []string{"Nice. Good. Fine. Okay. Sure."}, 3, MsgNoSentences},
		{"zero sentences requested", []string{"The view from the balcony was great"}, 0, MsgNoExtractiveTopK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.reviews, tt.k))
		})
	}
}

func TestExtractSplitsOnAllDelimiters(t *testing.T) {
	got := Extract([]string{"Was the pool heated? Yes it was very warm! The lobby music was far too loud all night."}, 5)
	assert.Equal(t, "The lobby music was far too loud all night Was the pool heated Yes it was very warm", got)
}

func TestExtractTieKeepsEncounterOrder(t *testing.T) {
	reviews := []string{
		"The breakfast buffet opened at seven",
		"The lobby had a marble floor and art",
	}
	assert.Equal(t, "The breakfast buffet opened at seven", Extract(reviews, 1))

	reversed := []string{reviews[1], reviews[0]}
	assert.Equal(t, "The lobby had a marble floor and art", Extract(reversed, 1))
}

func TestExtractDropsShortFragments(t *testing.T) {
	got := Extract([]string{"Nice. Good. The view from the balcony was great"}, 3)
	assert.Equal(t, "The view from the balcony was great", got)
}

func TestScoreSentence(t *testing.T) {
	tests := []struct {
		sentence string
		want     int
	}{
		{"clean clean clean rooms", 2},
		{"Great staff but dirty and noisy halls everywhere", 7},
		{"The staff was friendly, the room was clean", 3},
		{"A sentence of plain words", 0},
		{strings.Repeat("word ", 40), 0},
	}
	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreSentence(tt.sentence))
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	reviews := []string{
		"Excellent location near the park. Rude receptionist at check in! The pool was beautiful and clean.",
		"Dirty carpets, bad smell in the hallway. Breakfast had a wonderful variety of pastries.",
		"We would love to return some day. The parking garage was poorly signed?",
	}
	first := Extract(reviews, 3)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Extract(reviews, 3))
	}
}

func FuzzExtract(f *testing.F) {
	f.Add("Absolutely fantastic stay, clean rooms!", "Terrible noisy stay, rude staff.", 3)
	f.Add("", "ok", 0)
	f.Add("Café très propre! Le personnel était très aimable.", "???...!!!", 2)

	f.Fuzz(func(t *testing.T, a, b string, k int) {
		got := Extract([]string{a, b}, k)
		if got == "" {
			t.Fatalf("Extract returned an empty summary")
		}
		if again := Extract([]string{a, b}, k); again != got {
			t.Fatalf("Extract not deterministic: %q vs %q", got, again)
		}
	})
}

func BenchmarkExtract(b *testing.B) {
	reviews := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		reviews = append(reviews, "The staff were friendly and the room was clean. Breakfast was poor though! Would we come back? Probably yes.")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Extract(reviews, 3)
	}
}
