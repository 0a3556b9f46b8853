package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result    *domain.AnalysisResult
	sessionID string
	answer    *domain.Answer
	session   *domain.Session
	err       error

	lastURL      string
	lastQuestion string
}

func (m *mockAnalysisService) Analyze(_ context.Context, url string) (*domain.AnalysisResult, string, error) {
	m.lastURL = url
	if m.err != nil {
		return nil, "", m.err
	}
	return m.result, m.sessionID, nil
}

func (m *mockAnalysisService) Answer(_ context.Context, _, question string) (*domain.Answer, error) {
	m.lastQuestion = question
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAnalysisService) Session(_ context.Context, _ string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records []domain.AnalysisRecord
	err     error
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockHistoryService) Latest(_ context.Context, videoID string) (*domain.AnalysisRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].VideoID == videoID {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

var (
	_ driving.AnalysisService = (*mockAnalysisService)(nil)
	_ driving.HistoryService  = (*mockHistoryService)(nil)
)

func testResult() *domain.AnalysisResult {
	top := domain.Comment{
		Author:    "alice",
		Text:      "Loved every minute",
		LikeCount: 42,
		Sentiment: domain.Sentiment{Compound: 0.8, Positive: 0.7, Neutral: 0.3},
	}
	return &domain.AnalysisResult{
		Video: domain.VideoInfo{
			ID:      "dQw4w9WgXcQ",
			Title:   "Test Video",
			Channel: "Test Channel",
			URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		Comments: []domain.Comment{top, {Author: "bob", Text: "meh", Sentiment: domain.NeutralSentiment()}},
		Summary:  "Viewers enjoyed the video.",
		SentimentStats: domain.SentimentStats{
			Positive: 50,
			Neutral:  50,
			Total:    2,
		},
		TopComments: []domain.Comment{top},
		Model:       "test-model",
		AnalyzedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
