package summarize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessFiltersAndCollapses(t *testing.T) {
	reviews := []string{
		"  Lovely   rooms\n\twith a view  ",
		"too short",
		"",
		"Staff  were helpful\n\nat all hours",
	}
	got := Preprocess(reviews, 800)
	assert.Equal(t, "Lovely rooms with a view Staff were helpful at all hours", got)
}

func TestPreprocessTruncates(t *testing.T) {
	review := strings.Repeat("abcdefghij ", 100)
	got := Preprocess([]string{review}, 600)
	assert.Equal(t, 603, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	untouched := Preprocess([]string{"exactly short enough"}, 600)
	assert.Equal(t, "exactly short enough", untouched)
}

func TestPreprocessTruncatesOnRuneBoundary(t *testing.T) {
	review := strings.Repeat("é", 30)
	got := Preprocess([]string{review}, 25)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 25)+"...", got)
}

func TestCountMeaningful(t *testing.T) {
	assert.Equal(t, 0, countMeaningful(nil))
	assert.Equal(t, 0, countMeaningful([]string{"ok", "          tiny          ", "ten chars!"}))
	assert.Equal(t, 2, countMeaningful([]string{"eleven char", "ok", "this one counts too"}))
}
