package driving

import (
	"context"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// AnalysisService runs the comment analysis pipeline and answers
// follow-up questions against the resulting sessions.
type AnalysisService interface {
	// Analyze fetches, scores, summarises and indexes the comments of the
	// video at url, stores the artifacts in a new session and returns the
	// result with the session ID. Failures are one of domain.ErrInvalidURL,
	// ErrNotFound, ErrQuotaExceeded, ErrUpstream, ErrTimeout, ErrGeneration
	// or ErrEmbedding. No session is created on failure.
	Analyze(ctx context.Context, url string) (*domain.AnalysisResult, string, error)

	// Answer responds to a question using the session's summary and its
	// most similar comments. Failures are domain.ErrSessionNotFound or
	// domain.ErrGeneration.
	Answer(ctx context.Context, sessionID, question string) (*domain.Answer, error)

	// Session returns a stored session without modifying it.
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
}

// HistoryService exposes past analyses.
type HistoryService interface {
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	// Latest returns the most recent record for a video.
	Latest(ctx context.Context, videoID string) (*domain.AnalysisRecord, error)
}
