// Package vader scores comment sentiment with the VADER lexicon.
package vader

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.SentimentScorer = (*Scorer)(nil)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// Scorer wraps a govader analyzer. It is safe for concurrent use.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a scorer with the built-in VADER lexicon.
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the polarity scores of text. Empty input scores neutral.
func (s *Scorer) Score(text string) domain.Sentiment {
	plain := Normalise(text)
	if plain == "" {
		return domain.NeutralSentiment()
	}

	scores := s.analyzer.PolarityScores(plain)
	return domain.Sentiment{
		Compound: scores.Compound,
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
	}
}

// Normalise reduces a comment to prose: markdown is rendered and its tags
// stripped, links keep only their text, and bare URLs are removed.
func Normalise(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = linkPattern.ReplaceAllString(text, "$1")

	rendered := blackfriday.Run([]byte(text), blackfriday.WithNoExtensions())
	plain := html.UnescapeString(tagPattern.ReplaceAllString(string(rendered), " "))
	plain = urlPattern.ReplaceAllString(plain, "")

	return strings.Join(strings.Fields(plain), " ")
}
