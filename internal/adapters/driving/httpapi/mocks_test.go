package httpapi

import (
	"context"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

type mockAnalysisService struct {
	result    *domain.AnalysisResult
	sessionID string
	answer    *domain.Answer
	session   *domain.Session
	err       error

	lastURL      string
	lastSession  string
	lastQuestion string
}

func (m *mockAnalysisService) Analyze(_ context.Context, url string) (*domain.AnalysisResult, string, error) {
	m.lastURL = url
	if m.err != nil {
		return nil, "", m.err
	}
	return m.result, m.sessionID, nil
}

func (m *mockAnalysisService) Answer(_ context.Context, sessionID, question string) (*domain.Answer, error) {
	m.lastSession = sessionID
	m.lastQuestion = question
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAnalysisService) Session(_ context.Context, sessionID string) (*domain.Session, error) {
	m.lastSession = sessionID
	if m.err != nil {
		return nil, m.err
	}
	if m.session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return m.session, nil
}

type mockHistoryService struct {
	records   []domain.AnalysisRecord
	err       error
	lastLimit int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	m.lastLimit = limit
	return m.records, m.err
}

func (m *mockHistoryService) Latest(_ context.Context, _ string) (*domain.AnalysisRecord, error) {
	return nil, domain.ErrNotFound
}

func testResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Video: domain.VideoInfo{ID: "dQw4w9WgXcQ", Title: "Test Video"},
		Comments: []domain.Comment{
			{Author: "alice", Text: "great", LikeCount: 42, Sentiment: domain.Sentiment{Compound: 0.8}},
			{Author: "bob", Text: "fine"},
		},
		Summary:        "Viewers enjoyed the video.",
		SentimentStats: domain.SentimentStats{Positive: 50, Neutral: 50, Total: 2},
	}
}

func testSession() *domain.Session {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Session{
		ID:        "sess-1",
		Result:    testResult(),
		Index:     &domain.EmbeddingIndex{Dimensions: 2, Vectors: [][]float32{{1, 0}, {0, 1}}},
		CreatedAt: created,
		ExpiresAt: created.Add(30 * time.Minute),
	}
}
