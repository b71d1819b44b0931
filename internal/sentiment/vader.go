package sentiment

import (
	"context"
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
)

// VaderModelName identifies the lexicon classifier in model handles.
const VaderModelName = "vader"

// vaderNeutralBand is the |compound| below which a text is reported NEUTRAL.
const vaderNeutralBand = 0.20

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	mdLinkPattern  = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// VaderClassifier is a local rule-based classifier. It needs no model files
// and is the lightest entry in the classifier preference order.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderClassifier builds the VADER lexicon analyzer.
func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Classify reports POSITIVE and NEGATIVE probabilities derived from the VADER
// compound score, plus a NEUTRAL label when the compound is inside the
// neutral band.
func (v *VaderClassifier) Classify(_ context.Context, text string) ([]domain.LabelScore, error) {
	compound := v.analyzer.PolarityScores(plainText(text)).Compound

	positive := (1 + compound) / 2
	scores := []domain.LabelScore{
		{Label: string(domain.SentimentPositive), Score: positive},
		{Label: string(domain.SentimentNegative), Score: 1 - positive},
	}
	if math.Abs(compound) < vaderNeutralBand {
		scores = append(scores, domain.LabelScore{
			Label: string(domain.SentimentNeutral),
			Score: 1 - math.Abs(compound),
		})
	}
	return scores, nil
}

// plainText renders markdown and drops tags and links so emphasis markers and
// URLs do not reach the lexicon.
func plainText(input string) string {
	input = mdLinkPattern.ReplaceAllString(input, "$1")
	rendered := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{})))
	text := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(rendered), " "))
	text = urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
