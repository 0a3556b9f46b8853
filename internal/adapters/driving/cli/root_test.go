package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// mockAnalysisService implements driving.AnalysisService.
type mockAnalysisService struct {
	result    *domain.AnalysisResult
	sessionID string
	answer    *domain.Answer
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

func (m *mockAnalysisService) Session(_ context.Context, _ string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

// mockHistoryService implements driving.HistoryService.
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

// mockSettingsService implements driving.SettingsService over an in-memory value.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetYouTubeAPIKey(apiKey string) error {
	m.settings.YouTube.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetSessionBackend(backend domain.SessionBackend, address string) error {
	m.settings.Session.Backend = backend
	if address != "" {
		m.settings.Session.ValkeyAddress = address
	}
	return nil
}

func (m *mockSettingsService) SetAnswerMode(mode domain.AnswerMode) error {
	m.settings.Analysis.AnswerMode = mode
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// mockScheduler implements driving.Scheduler.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	return nil
}

func testResult() *domain.AnalysisResult {
	top := domain.Comment{
		Author:    "alice",
		Text:      "Best video\non the topic",
		LikeCount: 42,
		Sentiment: domain.Sentiment{Compound: 0.8},
	}
	return &domain.AnalysisResult{
		Video: domain.VideoInfo{
			ID:        "dQw4w9WgXcQ",
			Title:     "Test Video",
			Channel:   "Test Channel",
			URL:       domain.WatchURL("dQw4w9WgXcQ"),
			ViewCount: 1000,
		},
		Comments: []domain.Comment{top, {Author: "bob", Text: "meh"}},
		Summary:  "Viewers enjoyed the video.",
		SentimentStats: domain.SentimentStats{
			Positive:        50,
			Neutral:         50,
			Total:           2,
			AverageCompound: 0.4,
		},
		TopComments: []domain.Comment{top},
		AnalyzedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type testServices struct {
	analysis *mockAnalysisService
	history  *mockHistoryService
	settings *mockSettingsService
}

var testSvc testServices

// setupTestServices installs fresh mocks and returns a cleanup func.
func setupTestServices() func() {
	testSvc = testServices{
		analysis: &mockAnalysisService{
			result:    testResult(),
			sessionID: "sess-123",
			answer: &domain.Answer{
				SessionID: "sess-123",
				Question:  "what do people like?",
				Text:      "They like the topic.",
				Sources: []domain.RetrievedComment{
					{Position: 0, Comment: domain.Comment{Text: "Best video"}, Similarity: 0.87},
				},
			},
		},
		history: &mockHistoryService{records: []domain.AnalysisRecord{
			{
				ID:             7,
				VideoID:        "dQw4w9WgXcQ",
				Title:          "Test Video",
				CommentCount:   2,
				SentimentStats: domain.SentimentStats{Positive: 50},
				CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			},
		}},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Analysis: testSvc.analysis,
		History:  testSvc.history,
		Settings: testSvc.settings,
	})

	originalStdin := stdin
	stdin = nil

	return func() {
		SetServices(nil)
		stdin = originalStdin
		analyzeJSON = false
		askJSON = false
		historyJSON = false
		historyLimit = 20
	}
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "threadsense", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"analyze", "ask", "chat", "history", "mcp", "serve", "settings", "version"} {
		assert.True(t, names[want], "%s command should be registered", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-json"))
}

func TestSetServices_Nil(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	SetServices(nil)

	assert.Nil(t, analysisService)
	assert.Nil(t, historyService)
	assert.Nil(t, settingsService)
	assert.Nil(t, scheduler)
	assert.Empty(t, background)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version)
}

func TestStartBackground_Nothing(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stop := startBackground(context.Background())

	require.NotNil(t, stop)
	stop()
}

func TestStartBackground_RunsAndStops(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	sched := &mockScheduler{}
	taskStarted := make(chan struct{})
	taskDone := make(chan struct{})
	SetServices(&Services{
		Scheduler: sched,
		Background: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				close(taskStarted)
				<-ctx.Done()
				close(taskDone)
				return ctx.Err()
			},
		},
	})

	stop := startBackground(context.Background())

	select {
	case <-taskStarted:
	case <-time.After(time.Second):
		t.Fatal("background task did not start")
	}

	stop()

	select {
	case <-taskDone:
	default:
		t.Fatal("stop returned before the background task finished")
	}
	sched.mu.Lock()
	defer sched.mu.Unlock()
	assert.True(t, sched.started)
	assert.True(t, sched.stopped)
}
