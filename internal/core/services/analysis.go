package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Default pipeline limits.
const (
	DefaultMaxComments    = 500
	DefaultRequestTimeout = 60 * time.Second
)

// AnalysisConfig holds the pipeline tunables.
type AnalysisConfig struct {
	// MaxComments caps the comments fetched per video.
	MaxComments int

	// TopN is the number of most-liked comments reported.
	TopN int

	// TopK is the number of comments retrieved per question.
	TopK int

	// EmbedBatchSize is the number of texts per embedding request.
	EmbedBatchSize int

	// Summary bounds the summary prompt sample.
	Summary SummaryLimits

	// RequestTimeout bounds a whole analyze or answer request. Zero takes
	// the default.
	RequestTimeout time.Duration

	// AnswerMode selects the question answering strategy. Empty means simple.
	AnswerMode domain.AnswerMode
}

// AnalysisConfigFromSettings maps application settings to pipeline config.
func AnalysisConfigFromSettings(s *domain.AppSettings) AnalysisConfig {
	return AnalysisConfig{
		MaxComments:    s.YouTube.MaxComments,
		TopN:           s.Analysis.TopN,
		TopK:           s.Analysis.TopK,
		EmbedBatchSize: s.Analysis.EmbedBatchSize,
		Summary: SummaryLimits{
			SampleSize:   s.Analysis.PromptSampleSize,
			CommentChars: s.Analysis.PromptCommentChars,
			BudgetChars:  s.Analysis.PromptBudgetChars,
		},
		RequestTimeout: s.Analysis.RequestTimeout,
		AnswerMode:     s.Analysis.AnswerMode,
	}
}

// questionAnswerer answers one question against a stored session.
type questionAnswerer interface {
	Answer(ctx context.Context, session *domain.Session, question string) (*domain.Answer, error)
	SetPromptStore(store driven.PromptStore)
}

var (
	_ questionAnswerer = (*Answerer)(nil)
	_ questionAnswerer = (*AgentAnswerer)(nil)
)

// AnalysisService orchestrates fetch, score, summarise and embed, and
// answers questions against the resulting sessions.
type AnalysisService struct {
	fetcher    driven.CommentFetcher
	scorer     driven.SentimentScorer
	llm        driven.LLMService
	sessions   driven.SessionStore
	history    driven.HistoryStore
	summarizer *Summarizer
	indexer    *Indexer
	answerer   questionAnswerer
	config     AnalysisConfig
	now        func() time.Time
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(
	fetcher driven.CommentFetcher,
	scorer driven.SentimentScorer,
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	sessions driven.SessionStore,
	config AnalysisConfig,
) *AnalysisService {
	if config.MaxComments <= 0 {
		config.MaxComments = DefaultMaxComments
	}
	if config.TopN <= 0 {
		config.TopN = DefaultTopN
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if !config.AnswerMode.IsValid() {
		config.AnswerMode = domain.AnswerModeSimple
	}

	var answerer questionAnswerer = NewAnswerer(embedder, llm, config.TopK)
	if config.AnswerMode == domain.AnswerModeAgent {
		answerer = NewAgentAnswerer(embedder, llm)
	}
	logger.Debug("Answer mode: %s", config.AnswerMode)

	return &AnalysisService{
		fetcher:    fetcher,
		scorer:     scorer,
		llm:        llm,
		sessions:   sessions,
		summarizer: NewSummarizer(llm, config.Summary),
		indexer:    NewIndexer(embedder, config.EmbedBatchSize),
		answerer:   answerer,
		config:     config,
		now:        time.Now,
	}
}

// SetHistoryStore enables history recording. Recording is best-effort.
func (s *AnalysisService) SetHistoryStore(store driven.HistoryStore) {
	s.history = store
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.summarizer.SetPromptStore(store)
	s.answerer.SetPromptStore(store)
}

// Analyze runs the pipeline for the video at url. It is atomic: either a
// complete session is stored or nothing is. The returned result is a copy;
// changing it does not affect the stored session.
func (s *AnalysisService) Analyze(ctx context.Context, url string) (*domain.AnalysisResult, string, error) {
	logger.Section("Analyze")

	videoID, err := domain.ExtractVideoID(url)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("Video ID: %s", videoID)

	if s.fetcher == nil {
		return nil, "", fmt.Errorf("fetch comments: %w: YouTube API key is not configured", domain.ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	video, comments, err := s.fetcher.Fetch(ctx, videoID, s.config.MaxComments)
	if err != nil {
		return nil, "", fmt.Errorf("fetch comments: %w", classifyFetchError(err))
	}
	if video == nil {
		return nil, "", fmt.Errorf("fetch comments: %w: missing video metadata", domain.ErrUpstream)
	}
	logger.Info("Fetched %d comments for %q", len(comments), video.Title)

	scored := s.score(comments)

	var (
		summary string
		index   *domain.EmbeddingIndex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.summarizer.Summarize(gctx, video, scored)
		return err
	})
	g.Go(func() error {
		var err error
		index, err = s.indexer.Build(gctx, scored)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, "", fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		return nil, "", err
	}

	result := &domain.AnalysisResult{
		Video:          *video,
		Comments:       scored,
		Summary:        summary,
		SentimentStats: ComputeSentimentStats(scored),
		TopComments:    SelectTopComments(scored, s.config.TopN),
		AnalyzedAt:     s.now().UTC(),
	}
	if s.llm != nil {
		result.Model = s.llm.ModelName()
	}

	session := &domain.Session{Result: result, Index: index}
	if err := session.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	// Store under the caller's context: the pipeline deadline must not
	// abort a finished analysis.
	id, err := s.sessions.Create(context.WithoutCancel(ctx), session)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	logger.Info("Created session %s", id)

	s.record(ctx, id, result)
	return result.Clone(), id, nil
}

// score returns scored copies of comments in the same order.
func (s *AnalysisService) score(comments []domain.Comment) []domain.Comment {
	scored := make([]domain.Comment, len(comments))
	for i, c := range comments {
		sentiment := domain.NeutralSentiment()
		if s.scorer != nil {
			sentiment = s.scorer.Score(c.Text)
		}
		scored[i] = c.WithSentiment(sentiment)
	}
	return scored
}

func (s *AnalysisService) record(ctx context.Context, sessionID string, result *domain.AnalysisResult) {
	if s.history == nil {
		return
	}
	rec := domain.NewAnalysisRecord(sessionID, result)
	if _, err := s.history.Save(context.WithoutCancel(ctx), &rec); err != nil {
		logger.Warn("Failed to record analysis history: %v", err)
	}
}

// Answer responds to a question about an existing session.
func (s *AnalysisService) Answer(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	logger.Section("Answer")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answer, err := s.answerer.Answer(ctx, session, question)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return answer, err
}

// Session looks up a session. Unknown, expired and malformed sessions all
// report domain.ErrSessionNotFound. The session is shared with the store
// and must be treated as read-only.
func (s *AnalysisService) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrSessionNotFound)
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionNotFound, err)
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionNotFound, err)
	}
	return session, nil
}

// classifyFetchError keeps classified fetch failures and maps anything else
// to a timeout or upstream error.
func classifyFetchError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
}
