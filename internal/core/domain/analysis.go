package domain

import (
	"fmt"
	"slices"
	"time"
)

// SentimentStats aggregates class percentages over a comment set.
// Percentages sum to 100 when Total > 0 and are all zero otherwise.
type SentimentStats struct {
	Positive        float64 `json:"positive"`
	Negative        float64 `json:"negative"`
	Neutral         float64 `json:"neutral"`
	Total           int     `json:"total"`
	AverageCompound float64 `json:"average_compound"`
}

// AnalysisResult is the product of one analyze request.
type AnalysisResult struct {
	// Video is the metadata snapshot.
	Video VideoInfo `json:"video"`

	// Comments are the scored comments in fetch order.
	Comments []Comment `json:"comments"`

	// Summary is the completion text, verbatim.
	Summary string `json:"summary"`

	// SentimentStats are the aggregate class percentages.
	SentimentStats SentimentStats `json:"sentiment_stats"`

	// TopComments are the most-liked comments, ties in fetch order.
	TopComments []Comment `json:"top_comments"`

	// Model names the LLM that wrote the summary.
	Model string `json:"model,omitempty"`

	// AnalyzedAt is when the result was assembled.
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Clone returns a copy whose comment slices can be changed without
// affecting r.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Comments = slices.Clone(r.Comments)
	out.TopComments = slices.Clone(r.TopComments)
	return &out
}

// EmbeddingIndex holds one vector per comment. Vectors[i] belongs to
// Comments[i] of the owning AnalysisResult. It is read-only after construction.
type EmbeddingIndex struct {
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
	Vectors    [][]float32 `json:"vectors"`
}

// Len returns the number of vectors.
func (ix *EmbeddingIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Vectors)
}

// Session is the time-limited bundle of one video's analysis artifacts.
// Sessions are write-once: stores never update them after Create.
type Session struct {
	ID        string          `json:"id"`
	Result    *AnalysisResult `json:"result"`
	Index     *EmbeddingIndex `json:"index"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Validate checks that the index holds exactly one vector per comment.
func (s *Session) Validate() error {
	if s.Result == nil {
		return fmt.Errorf("%w: session has no result", ErrInvalidInput)
	}
	if s.Index == nil {
		return fmt.Errorf("%w: session has no index", ErrInvalidInput)
	}
	if s.Index.Len() != len(s.Result.Comments) {
		return fmt.Errorf("%w: index has %d vectors for %d comments",
			ErrInvalidInput, s.Index.Len(), len(s.Result.Comments))
	}
	return nil
}

// RetrievedComment is a comment returned by similarity search.
type RetrievedComment struct {
	// Position is the comment's index in the session's comment sequence.
	Position int `json:"position"`

	Comment Comment `json:"comment"`

	// Similarity is the cosine similarity to the query.
	Similarity float64 `json:"similarity"`
}

// Answer is the response to a follow-up question.
type Answer struct {
	SessionID string             `json:"session_id"`
	Question  string             `json:"question"`
	Text      string             `json:"answer"`
	Sources   []RetrievedComment `json:"sources"`
}

// AnalysisRecord is a persisted summary of a past analysis.
// It carries no comments or vectors.
type AnalysisRecord struct {
	ID             int64          `json:"id"`
	VideoID        string         `json:"video_id"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	CommentCount   int            `json:"comment_count"`
	Summary        string         `json:"summary"`
	SentimentStats SentimentStats `json:"sentiment_stats"`
	Model          string         `json:"model"`
	SessionID      string         `json:"session_id"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewAnalysisRecord builds a history record from a finished analysis.
func NewAnalysisRecord(sessionID string, result *AnalysisResult) AnalysisRecord {
	return AnalysisRecord{
		VideoID:        result.Video.ID,
		Title:          result.Video.Title,
		URL:            result.Video.URL,
		CommentCount:   len(result.Comments),
		Summary:        result.Summary,
		SentimentStats: result.SentimentStats,
		Model:          result.Model,
		SessionID:      sessionID,
		CreatedAt:      result.AnalyzedAt,
	}
}
