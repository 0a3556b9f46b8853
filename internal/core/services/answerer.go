package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// DefaultTopK is the number of comments retrieved per question.
const DefaultTopK = 5

// Answerer answers questions against a session's index. It never modifies
// the session.
type Answerer struct {
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  *promptLoader
	topK     int
}

// NewAnswerer creates an answerer. A topK of zero takes the default.
func NewAnswerer(embedder driven.EmbeddingService, llm driven.LLMService, topK int) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{
		embedder: embedder,
		llm:      llm,
		prompts:  &promptLoader{},
		topK:     topK,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *Answerer) SetPromptStore(store driven.PromptStore) {
	a.prompts = &promptLoader{store: store}
}

// Retrieve embeds the question and returns the most similar comments.
func (a *Answerer) Retrieve(
	ctx context.Context, session *domain.Session, question string,
) ([]domain.RetrievedComment, error) {
	if a.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	text := PrepareQuery(question)
	if text == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	query, err := a.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits := Search(session.Index, query, a.topK)
	return retrievedComments(session.Result.Comments, hits), nil
}

// Prompt builds the user prompt for the answer call.
func (a *Answerer) Prompt(summary, question string, related []domain.RetrievedComment) string {
	lines := make([]string, 0, len(related))
	for _, r := range related {
		lines = append(lines, "- "+strings.Join(strings.Fields(r.Comment.Text), " "))
	}
	block := strings.Join(lines, "\n")
	if block == "" {
		block = "(no related comments)"
	}
	return renderPrompt(a.prompts.load(driven.PromptAnswer), map[string]string{
		"summary":  summary,
		"comments": block,
		"question": question,
	})
}

// Answer retrieves related comments and asks the LLM. Any failure is
// reported as domain.ErrGeneration.
func (a *Answerer) Answer(ctx context.Context, session *domain.Session, question string) (*domain.Answer, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	related, err := a.Retrieve(ctx, session, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	logger.Debug("Retrieved %d related comments for question", len(related))

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: a.prompts.load(driven.PromptAnswerSystem)},
		{Role: driven.RoleUser, Content: a.Prompt(session.Result.Summary, question, related)},
	}
	text, err := a.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("%w: answer completion: %w", domain.ErrGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty answer", domain.ErrGeneration)
	}

	return &domain.Answer{
		SessionID: session.ID,
		Question:  question,
		Text:      text,
		Sources:   related,
	}, nil
}
