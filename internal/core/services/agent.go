package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// Agent retrieval limits.
const (
	// DefaultAgentTopK is the final number of comments when the plan omits it.
	DefaultAgentTopK = 8

	// DefaultPerQueryK is the number of hits kept per query when the plan omits it.
	DefaultPerQueryK = 5

	// MaxCoverageRounds bounds the coverage check and refine loop.
	MaxCoverageRounds = 2

	maxAgentTopK        = 50
	maxRerankCandidates = 50
	rerankTextChars     = 400
	coverageSampleSize  = 8
	coverageTextChars   = 300
	planSummaryChars    = 1200

	fallbackInstructions = "Be concise and cite 2-3 comments if used."
)

var errNoJSONObject = errors.New("reply holds no JSON object")

// RetrievalPlan is the LLM's plan for answering one question.
// NeedSummary, PreferRecent and MinKeywords are advisory and only logged.
type RetrievalPlan struct {
	NeedComments       bool     `json:"need_comments"`
	NeedSummary        bool     `json:"need_summary"`
	PreferRecent       bool     `json:"prefer_recent"`
	TopK               int      `json:"top_k"`
	PerQueryK          int      `json:"per_query_k"`
	Rerank             bool     `json:"rerank"`
	QueryRewrites      []string `json:"query_rewrites"`
	MinKeywords        []string `json:"min_keywords"`
	AnswerInstructions string   `json:"answer_instructions"`
	Rationale          string   `json:"rationale"`
}

func defaultPlan() RetrievalPlan {
	return RetrievalPlan{
		NeedComments: true,
		NeedSummary:  true,
		TopK:         DefaultAgentTopK,
		PerQueryK:    DefaultPerQueryK,
		Rerank:       true,
	}
}

// FallbackPlan is used when the planner call fails or returns garbage.
func FallbackPlan(question string) RetrievalPlan {
	plan := defaultPlan()
	plan.QueryRewrites = []string{question}
	plan.AnswerInstructions = fallbackInstructions
	plan.Rationale = "fallback plan"
	return plan
}

// ParsePlan decodes a planner reply. Fields the reply leaves out keep their
// defaults and out-of-range sizes are clamped.
func ParsePlan(reply string) (RetrievalPlan, error) {
	plan := defaultPlan()
	if err := decodeJSONObject(reply, &plan); err != nil {
		return RetrievalPlan{}, err
	}
	if plan.TopK <= 0 {
		plan.TopK = DefaultAgentTopK
	}
	plan.TopK = min(plan.TopK, maxAgentTopK)
	if plan.PerQueryK <= 0 {
		plan.PerQueryK = DefaultPerQueryK
	}
	plan.PerQueryK = min(plan.PerQueryK, maxAgentTopK)
	plan.QueryRewrites = nonBlank(plan.QueryRewrites)
	return plan, nil
}

// CoverageCheck is the LLM's verdict on whether the selected comments suffice.
type CoverageCheck struct {
	NeedMore   bool     `json:"need_more"`
	Reason     string   `json:"reason"`
	NewQueries []string `json:"new_queries"`
}

// AgentAnswerer answers questions with an LLM-driven retrieval loop: plan,
// multi-query search, optional rerank, coverage check and refine. It never
// modifies the session.
type AgentAnswerer struct {
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  *promptLoader
}

// NewAgentAnswerer creates an agent answerer.
func NewAgentAnswerer(embedder driven.EmbeddingService, llm driven.LLMService) *AgentAnswerer {
	return &AgentAnswerer{
		embedder: embedder,
		llm:      llm,
		prompts:  &promptLoader{},
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *AgentAnswerer) SetPromptStore(store driven.PromptStore) {
	a.prompts = &promptLoader{store: store}
}

// Plan asks the LLM how to retrieve comments for question. It never fails:
// any error yields FallbackPlan.
func (a *AgentAnswerer) Plan(ctx context.Context, session *domain.Session, question string) RetrievalPlan {
	prompt := renderPrompt(a.prompts.load(driven.PromptPlan), map[string]string{
		"title":    session.Result.Video.Title,
		"summary":  truncateRunes(session.Result.Summary, planSummaryChars),
		"question": question,
	})
	reply, err := a.jsonChat(ctx, driven.PromptPlanSystem, prompt)
	if err != nil {
		logger.Warn("Retrieval planning failed, using fallback plan: %v", err)
		return FallbackPlan(question)
	}
	plan, err := ParsePlan(reply)
	if err != nil {
		logger.Warn("Retrieval plan unreadable, using fallback plan: %v", err)
		return FallbackPlan(question)
	}
	return plan
}

// SearchMulti embeds every query in one batch, keeps the perQueryK best hits
// of each, merges them by maximum similarity and returns the best topK.
// Blank and duplicate queries are skipped.
func (a *AgentAnswerer) SearchMulti(
	ctx context.Context, index *domain.EmbeddingIndex, queries []string, perQueryK, topK int,
) ([]Hit, error) {
	if a.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, 0, len(queries))
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		text := PrepareQuery(q)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		texts = append(texts, text)
	}
	if len(texts) == 0 || index.Len() == 0 || topK <= 0 {
		return nil, nil
	}

	vectors, err := a.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed queries: got %d vectors for %d queries", len(vectors), len(texts))
	}

	sets := make([][]Hit, 0, len(vectors))
	for _, v := range vectors {
		sets = append(sets, Search(index, v, perQueryK))
	}
	return firstHits(mergeHits(sets...), topK), nil
}

// Rerank asks the LLM to score up to 50 candidates and returns the best
// limit in score order. Hits keep their cosine similarity. Scores for
// unknown positions are ignored; a failed or empty reply keeps the
// candidate order.
func (a *AgentAnswerer) Rerank(
	ctx context.Context, question string, comments []domain.Comment, candidates []Hit, limit int,
) []Hit {
	if len(candidates) == 0 {
		return nil
	}
	pool := firstHits(candidates, maxRerankCandidates)

	lines := make([]string, 0, len(pool))
	byPosition := make(map[int]Hit, len(pool))
	for _, h := range pool {
		byPosition[h.Position] = h
		lines = append(lines, fmt.Sprintf("- idx=%d pre=%.3f text=%s",
			h.Position, h.Similarity, truncateRunes(commentText(comments, h.Position), rerankTextChars)))
	}
	prompt := renderPrompt(a.prompts.load(driven.PromptRerank), map[string]string{
		"question":   question,
		"candidates": strings.Join(lines, "\n"),
	})

	var parsed struct {
		Scores []struct {
			Idx   float64 `json:"idx"`
			Score float64 `json:"score"`
		} `json:"scores"`
	}
	reply, err := a.jsonChat(ctx, driven.PromptRerankSystem, prompt)
	if err == nil {
		err = decodeJSONObject(reply, &parsed)
	}
	if err != nil {
		logger.Warn("Rerank failed, keeping similarity order: %v", err)
		return firstHits(candidates, limit)
	}

	type scoredHit struct {
		hit   Hit
		score float64
	}
	ranked := make([]scoredHit, 0, len(parsed.Scores))
	used := make(map[int]bool, len(parsed.Scores))
	for _, s := range parsed.Scores {
		pos := int(s.Idx)
		if float64(pos) != s.Idx || used[pos] {
			continue
		}
		h, ok := byPosition[pos]
		if !ok {
			continue
		}
		used[pos] = true
		ranked = append(ranked, scoredHit{hit: h, score: s.Score})
	}
	if len(ranked) == 0 {
		logger.Debug("Rerank returned no usable scores")
		return firstHits(candidates, limit)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]Hit, 0, min(len(ranked), limit))
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		out = append(out, r.hit)
	}
	return out
}

// CheckCoverage asks whether the selected comments are enough to answer
// question. A failed call reports that no more comments are needed.
func (a *AgentAnswerer) CheckCoverage(
	ctx context.Context, question string, comments []domain.Comment, selected []Hit,
) CoverageCheck {
	sample := firstHits(selected, coverageSampleSize)
	lines := make([]string, 0, len(sample))
	for _, h := range sample {
		lines = append(lines, "- "+truncateRunes(commentText(comments, h.Position), coverageTextChars))
	}
	prompt := renderPrompt(a.prompts.load(driven.PromptCoverage), map[string]string{
		"question": question,
		"comments": strings.Join(lines, "\n"),
	})

	var check CoverageCheck
	reply, err := a.jsonChat(ctx, driven.PromptCoverageSystem, prompt)
	if err == nil {
		err = decodeJSONObject(reply, &check)
	}
	if err != nil {
		logger.Warn("Coverage check failed, assuming coverage: %v", err)
		return CoverageCheck{Reason: err.Error()}
	}
	check.NewQueries = nonBlank(check.NewQueries)
	return check
}

// Retrieve runs the search part of the loop for an already made plan.
func (a *AgentAnswerer) Retrieve(
	ctx context.Context, session *domain.Session, question string, plan RetrievalPlan,
) ([]Hit, error) {
	if !plan.NeedComments {
		return nil, nil
	}
	comments := session.Result.Comments

	queries := append([]string{question}, plan.QueryRewrites...)
	candidates, err := a.SearchMulti(ctx, session.Index, queries, plan.PerQueryK, max(plan.TopK, DefaultTopK))
	if err != nil {
		return nil, err
	}
	selected := a.narrow(ctx, question, comments, candidates, plan)

	for round := 1; round <= MaxCoverageRounds; round++ {
		check := a.CheckCoverage(ctx, question, comments, selected)
		if !check.NeedMore || len(check.NewQueries) == 0 {
			break
		}
		logger.Debug("Coverage round %d: %s (%d new queries)", round, check.Reason, len(check.NewQueries))

		more, err := a.SearchMulti(ctx, session.Index, check.NewQueries, max(3, plan.PerQueryK/2), plan.TopK*2)
		if err != nil {
			return nil, err
		}
		selected = a.narrow(ctx, question, comments, mergeHits(selected, more), plan)
	}
	return selected, nil
}

func (a *AgentAnswerer) narrow(
	ctx context.Context, question string, comments []domain.Comment, candidates []Hit, plan RetrievalPlan,
) []Hit {
	if plan.Rerank {
		return a.Rerank(ctx, question, comments, candidates, plan.TopK)
	}
	return firstHits(candidates, plan.TopK)
}

// Prompt builds the user prompt for the final answer call.
func (a *AgentAnswerer) Prompt(
	session *domain.Session, question string, plan RetrievalPlan, related []domain.RetrievedComment,
) string {
	result := session.Result
	video := result.Video

	lines := make([]string, 0, len(related))
	for _, r := range related {
		lines = append(lines, "- "+strings.Join(strings.Fields(r.Comment.Text), " "))
	}
	block := strings.Join(lines, "\n")
	if block == "" {
		block = "(none selected)"
	}
	instructions := strings.TrimSpace(plan.AnswerInstructions)
	if instructions == "" {
		instructions = "None"
	}
	published := "unknown"
	if !video.PublishedAt.IsZero() {
		published = video.PublishedAt.UTC().Format(time.RFC3339)
	}
	stats := result.SentimentStats

	return renderPrompt(a.prompts.load(driven.PromptAgentAnswer), map[string]string{
		"instructions": instructions,
		"title":        video.Title,
		"published":    published,
		"views":        strconv.FormatUint(video.ViewCount, 10),
		"likes":        strconv.FormatUint(video.LikeCount, 10),
		"url":          video.URL,
		"thumbnail":    video.ThumbnailURL,
		"summary":      result.Summary,
		"comments":     block,
		"total":        strconv.Itoa(len(result.Comments)),
		"sentiment": fmt.Sprintf("%.1f%% positive, %.1f%% negative, %.1f%% neutral over %d comments",
			stats.Positive, stats.Negative, stats.Neutral, stats.Total),
		"question": question,
	})
}

// Answer plans, retrieves and asks the LLM. Planner, rerank and coverage
// failures degrade to the simpler path; embedding and final completion
// failures are reported as domain.ErrGeneration.
func (a *AgentAnswerer) Answer(ctx context.Context, session *domain.Session, question string) (*domain.Answer, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	plan := a.Plan(ctx, session, question)
	logger.Debug("Retrieval plan: comments=%t top_k=%d per_query_k=%d rerank=%t rewrites=%d keywords=%v recent=%t (%s)",
		plan.NeedComments, plan.TopK, plan.PerQueryK, plan.Rerank, len(plan.QueryRewrites),
		plan.MinKeywords, plan.PreferRecent, plan.Rationale)

	selected, err := a.Retrieve(ctx, session, question, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	related := retrievedComments(session.Result.Comments, selected)
	logger.Debug("Selected %d comments for question", len(related))

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: a.prompts.load(driven.PromptAnswerSystem)},
		{Role: driven.RoleUser, Content: a.Prompt(session, question, plan, related)},
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

func (a *AgentAnswerer) jsonChat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: a.prompts.load(systemPrompt)},
		{Role: driven.RoleUser, Content: userPrompt},
	}
	return a.llm.Chat(ctx, messages, driven.ChatOptions{JSON: true})
}

// decodeJSONObject unmarshals the outermost {...} span of reply into v, so
// replies wrapped in prose or code fences still parse.
func decodeJSONObject(reply string, v any) error {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return errNoJSONObject
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// mergeHits unions hit sets keeping each position's best similarity,
// ordered by similarity then position.
func mergeHits(sets ...[]Hit) []Hit {
	best := make(map[int]float64)
	for _, set := range sets {
		for _, h := range set {
			if s, ok := best[h.Position]; !ok || h.Similarity > s {
				best[h.Position] = h.Similarity
			}
		}
	}
	out := make([]Hit, 0, len(best))
	for pos, sim := range best {
		out = append(out, Hit{Position: pos, Similarity: sim})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func firstHits(hits []Hit, n int) []Hit {
	if n < 0 {
		n = 0
	}
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}

func retrievedComments(comments []domain.Comment, hits []Hit) []domain.RetrievedComment {
	out := make([]domain.RetrievedComment, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(comments) {
			continue
		}
		out = append(out, domain.RetrievedComment{
			Position:   h.Position,
			Comment:    comments[h.Position],
			Similarity: h.Similarity,
		})
	}
	return out
}

func commentText(comments []domain.Comment, pos int) string {
	if pos < 0 || pos >= len(comments) {
		return ""
	}
	return strings.Join(strings.Fields(comments[pos].Text), " ")
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
