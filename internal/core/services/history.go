package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is the page size when no limit is given.
const DefaultHistoryLimit = 20

// HistoryService exposes past analyses.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service. A nil store yields empty results.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns up to limit records, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if s.store == nil {
		return []domain.AnalysisRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// Latest returns the most recent record for a video.
func (s *HistoryService) Latest(ctx context.Context, videoID string) (*domain.AnalysisRecord, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.GetByVideo(ctx, videoID)
}
