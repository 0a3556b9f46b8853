package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// Default summary prompt limits.
const (
	DefaultPromptSampleSize   = 50
	DefaultPromptCommentChars = 500
	DefaultPromptBudgetChars  = 12000
	DefaultTopN               = 5
)

// SummaryLimits bound the comment sample placed in the summary prompt.
type SummaryLimits struct {
	// SampleSize is the maximum number of comments in the sample.
	SampleSize int

	// CommentChars truncates each comment to this many runes.
	CommentChars int

	// BudgetChars caps the whole comment block, in runes.
	BudgetChars int
}

func (l SummaryLimits) withDefaults() SummaryLimits {
	if l.SampleSize <= 0 {
		l.SampleSize = DefaultPromptSampleSize
	}
	if l.CommentChars <= 0 {
		l.CommentChars = DefaultPromptCommentChars
	}
	if l.BudgetChars <= 0 {
		l.BudgetChars = DefaultPromptBudgetChars
	}
	return l
}

// ComputeSentimentStats returns the share of comments in each sentiment class.
// An empty set yields zero for every class.
func ComputeSentimentStats(comments []domain.Comment) domain.SentimentStats {
	total := len(comments)
	if total == 0 {
		return domain.SentimentStats{}
	}

	var pos, neg int
	var compound float64
	for i := range comments {
		compound += comments[i].Sentiment.Compound
		switch comments[i].Sentiment.Label() {
		case domain.SentimentPositive:
			pos++
		case domain.SentimentNegative:
			neg++
		}
	}
	neu := total - pos - neg

	n := float64(total)
	return domain.SentimentStats{
		Positive:        float64(pos) / n * 100,
		Negative:        float64(neg) / n * 100,
		Neutral:         float64(neu) / n * 100,
		Total:           total,
		AverageCompound: compound / n,
	}
}

// SelectTopComments returns the n most-liked comments, most liked first.
// Ties keep fetch order. The input slice is not reordered.
func SelectTopComments(comments []domain.Comment, n int) []domain.Comment {
	if n <= 0 || len(comments) == 0 {
		return []domain.Comment{}
	}
	sorted := sortByLikes(comments)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func sortByLikes(comments []domain.Comment) []domain.Comment {
	sorted := make([]domain.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LikeCount > sorted[j].LikeCount
	})
	return sorted
}

// BuildCommentSample formats the most-liked comments as "- [N likes] text"
// lines within the given limits. It returns the block and how many comments
// it holds.
func BuildCommentSample(comments []domain.Comment, limits SummaryLimits) (string, int) {
	limits = limits.withDefaults()

	var b strings.Builder
	count, size := 0, 0
	for _, c := range sortByLikes(comments) {
		if count == limits.SampleSize {
			break
		}
		text := strings.Join(strings.Fields(c.Text), " ")
		if text == "" {
			continue
		}
		line := fmt.Sprintf("- [%d likes] %s", c.LikeCount, truncateRunes(text, limits.CommentChars))
		n := utf8.RuneCountInString(line)
		if count > 0 {
			n++
		}
		if size+n > limits.BudgetChars {
			break
		}
		if count > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		size += n
		count++
	}
	return b.String(), count
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Summarizer writes the natural-language synthesis of a comment set.
type Summarizer struct {
	llm     driven.LLMService
	prompts *promptLoader
	limits  SummaryLimits
}

// NewSummarizer creates a summarizer. Zero limits take the defaults.
func NewSummarizer(llm driven.LLMService, limits SummaryLimits) *Summarizer {
	return &Summarizer{
		llm:     llm,
		prompts: &promptLoader{},
		limits:  limits.withDefaults(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Summarizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = &promptLoader{store: store}
}

// Prompt builds the user prompt for the summary call.
func (s *Summarizer) Prompt(video *domain.VideoInfo, comments []domain.Comment) string {
	sample, count := BuildCommentSample(comments, s.limits)
	if count == 0 {
		sample = "(no comments)"
	}
	return renderPrompt(s.prompts.load(driven.PromptSummary), map[string]string{
		"title":    video.Title,
		"views":    strconv.FormatUint(video.ViewCount, 10),
		"likes":    strconv.FormatUint(video.LikeCount, 10),
		"count":    strconv.Itoa(count),
		"comments": sample,
	})
}

// Summarize issues one completion call and returns its text verbatim.
// A failed call or blank output returns domain.ErrGeneration.
func (s *Summarizer) Summarize(
	ctx context.Context, video *domain.VideoInfo, comments []domain.Comment,
) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.prompts.load(driven.PromptSummarySystem)},
		{Role: driven.RoleUser, Content: s.Prompt(video, comments)},
	}
	logger.Debug("Summarizing %d comments with %s", len(comments), s.llm.ModelName())

	summary, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0.3})
	if err != nil {
		return "", fmt.Errorf("%w: summary completion: %w", domain.ErrGeneration, err)
	}
	if strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrGeneration)
	}
	return summary, nil
}
