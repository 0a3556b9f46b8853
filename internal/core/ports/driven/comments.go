package driven

import (
	"context"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// CommentFetcher retrieves a video's metadata and its top-level comments.
// Failures are classified as domain.ErrNotFound, domain.ErrQuotaExceeded,
// domain.ErrTimeout or domain.ErrUpstream.
type CommentFetcher interface {
	// Fetch returns the video snapshot and up to max comments in API order.
	// Comments are returned without sentiment.
	Fetch(ctx context.Context, videoID string, max int) (*domain.VideoInfo, []domain.Comment, error)
}

// SentimentScorer scores text polarity. Implementations are pure and
// safe for concurrent use.
type SentimentScorer interface {
	// Score returns the polarity scores for text. Empty or malformed
	// input scores neutral.
	Score(text string) domain.Sentiment
}
