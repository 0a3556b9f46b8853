package domain

import "time"

// Classification thresholds on the compound score.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Sentiment holds the polarity scores for a single piece of text.
type Sentiment struct {
	// Compound is the normalised polarity in [-1, 1].
	Compound float64 `json:"compound"`

	// Positive, Negative and Neutral are the proportion sub-scores.
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// NeutralSentiment is returned for empty or unscorable text.
func NeutralSentiment() Sentiment {
	return Sentiment{Neutral: 1}
}

// Label classifies the sentiment by its compound score.
func (s Sentiment) Label() SentimentLabel {
	return Classify(s.Compound)
}

// SentimentLabel is the three-way classification of a compound score.
type SentimentLabel string

// Sentiment classes.
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// String returns the string representation.
func (l SentimentLabel) String() string {
	return string(l)
}

// Classify maps a compound score to a label.
// Boundaries are inclusive: 0.05 is positive and -0.05 is negative.
func Classify(compound float64) SentimentLabel {
	switch {
	case compound >= PositiveThreshold:
		return SentimentPositive
	case compound <= NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Comment is a top-level comment on a video. It is immutable once fetched;
// scoring produces a copy with Sentiment populated.
type Comment struct {
	// Author is the display name of the commenter.
	Author string `json:"author"`

	// Text is the plain-text body.
	Text string `json:"text"`

	// LikeCount is the number of likes at fetch time.
	LikeCount int64 `json:"like_count"`

	// PublishedAt is when the comment was posted.
	PublishedAt time.Time `json:"published_at,omitzero"`

	// Sentiment is populated by the scorer.
	Sentiment Sentiment `json:"sentiment"`
}

// WithSentiment returns a copy of the comment carrying the given score.
func (c Comment) WithSentiment(s Sentiment) Comment {
	c.Sentiment = s
	return c
}
