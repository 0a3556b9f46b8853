package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
)

// mockFetcher returns a fixed video and comment set.
type mockFetcher struct {
	mu       sync.Mutex
	video    *domain.VideoInfo
	comments []domain.Comment
	err      error
	calls    int
	lastID   string
	lastMax  int
}

func (m *mockFetcher) Fetch(_ context.Context, videoID string, limit int) (*domain.VideoInfo, []domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastID = videoID
	m.lastMax = limit
	if m.err != nil {
		return nil, nil, m.err
	}
	out := make([]domain.Comment, len(m.comments))
	copy(out, m.comments)
	video := m.video
	if video == nil {
		video = &domain.VideoInfo{ID: videoID, Title: "Test Video"}
	}
	return video, out, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockScorer scores by keyword: "good" is positive, "bad" is negative.
type mockScorer struct{}

func (mockScorer) Score(text string) domain.Sentiment {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "good"):
		return domain.Sentiment{Compound: 0.6, Positive: 0.5, Neutral: 0.5}
	case strings.Contains(lower, "bad"):
		return domain.Sentiment{Compound: -0.6, Negative: 0.5, Neutral: 0.5}
	default:
		return domain.NeutralSentiment()
	}
}

// mockLLMService returns a fixed response and records prompts. When respond
// is set it decides each reply instead.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	respond  func(messages []driven.ChatMessage, opts driven.ChatOptions) (string, error)
	calls    int
	messages [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	return m.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, driven.ChatOptions{})
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)
	if m.respond != nil {
		return m.respond(messages, opts)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockLLMService) lastUserPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	msgs := m.messages[len(m.messages)-1]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == driven.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

// mockEmbeddingService returns deterministic vectors. Texts containing a
// key in vectors get that vector; other texts hash to a 4-dim vector.
type mockEmbeddingService struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	err        error
	batchErr   error
	short      bool
	batchCalls int
	batchSizes []int
	embedCalls int
	texts      []string
	delay      time.Duration
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	for key, v := range m.vectors {
		if strings.Contains(text, key) {
			out := make([]float32, len(v))
			copy(out, v)
			return out
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum32()
	return []float32{
		float32(sum&0xff) + 1,
		float32((sum>>8)&0xff) + 1,
		float32((sum>>16)&0xff) + 1,
		float32((sum>>24)&0xff) + 1,
	}
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	m.texts = append(m.texts, texts...)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vectorFor(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) embedded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

func (m *mockEmbeddingService) Dimensions() int { return 4 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockSessionStore is a map-backed store with injectable failures.
type mockSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	createErr error
	getErr    error
	sweepErr  error
	swept     int
	sweeps    int
	nextID    int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) Create(_ context.Context, session *domain.Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.nextID++
	id := "session-" + string(rune('a'+m.nextID-1))
	stored := *session
	stored.ID = id
	m.sessions[id] = &stored
	return id, nil
}

func (m *mockSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	if m.sweepErr != nil {
		return 0, m.sweepErr
	}
	return m.swept, nil
}

func (m *mockSessionStore) Len(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *mockSessionStore) Close() error { return nil }

// mockHistoryStore records saved analyses.
type mockHistoryStore struct {
	mu       sync.Mutex
	records  []domain.AnalysisRecord
	saveErr  error
	listErr  error
	pruned   int
	pruneErr error
	cutoffs  []time.Time
}

func (m *mockHistoryStore) Save(_ context.Context, record *domain.AnalysisRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	rec := *record
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *mockHistoryStore) List(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.AnalysisRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockHistoryStore) GetByVideo(_ context.Context, videoID string) (*domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].VideoID == videoID {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryStore) Prune(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, before)
	if m.pruneErr != nil {
		return 0, m.pruneErr
	}
	return m.pruned, nil
}

func (m *mockHistoryStore) Close() error { return nil }

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("unknown prompt")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// testComments returns comments with likes 10, 50 and 5 in fetch order.
func testComments() []domain.Comment {
	return []domain.Comment{
		{Author: "alice", Text: "good video about cats", LikeCount: 10},
		{Author: "bob", Text: "bad audio in the middle", LikeCount: 50},
		{Author: "carol", Text: "where was this filmed?", LikeCount: 5},
	}
}
