package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// SessionStore holds analysis sessions until they expire.
// Sessions are write-once: there is no update operation.
type SessionStore interface {
	// Create stores a new session under a freshly generated, collision-checked
	// identifier and returns it. CreatedAt and ExpiresAt are set by the store.
	Create(ctx context.Context, session *domain.Session) (string, error)

	// Get returns the session, or domain.ErrSessionNotFound if it is
	// unknown or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Sweep removes expired sessions and returns how many were removed.
	Sweep(ctx context.Context) (int, error)

	// Len returns the number of live sessions, or -1 if unknown.
	Len(ctx context.Context) int

	// Close releases resources.
	Close() error
}

// HistoryStore persists a record of past analyses.
type HistoryStore interface {
	// Save inserts a record and returns its ID.
	Save(ctx context.Context, record *domain.AnalysisRecord) (int64, error)

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	// GetByVideo returns the latest record for a video, or domain.ErrNotFound.
	GetByVideo(ctx context.Context, videoID string) (*domain.AnalysisRecord, error)

	// Prune deletes records created before the cutoff and returns the count.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases resources.
	Close() error
}
