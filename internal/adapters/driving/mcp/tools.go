package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// AnalyzeInput is the input schema for the analyze_video tool.
type AnalyzeInput struct {
	URL string `json:"url" jsonschema:"the YouTube video URL or 11-character video ID"`
}

// AnalyzeOutput is the output schema for the analyze_video tool.
type AnalyzeOutput struct {
	SessionID      string                `json:"session_id"`
	VideoID        string                `json:"video_id"`
	Title          string                `json:"title"`
	Channel        string                `json:"channel"`
	CommentCount   int                   `json:"comment_count"`
	Summary        string                `json:"summary"`
	SentimentStats domain.SentimentStats `json:"sentiment_stats"`
	TopComments    []CommentOutput       `json:"top_comments"`
}

// CommentOutput is a comment as reported to MCP clients.
type CommentOutput struct {
	Author    string  `json:"author"`
	Text      string  `json:"text"`
	LikeCount int64   `json:"like_count"`
	Sentiment string  `json:"sentiment"`
	Compound  float64 `json:"compound"`
}

// AskInput is the input schema for the ask_question tool.
type AskInput struct {
	SessionID string `json:"session_id" jsonschema:"the session ID returned by analyze_video"`
	Question  string `json:"question" jsonschema:"the question about the video's comments"`
}

// AskOutput is the output schema for the ask_question tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Sources []CommentOutput `json:"sources"`
}

// SessionInput is the input schema for the get_session tool.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session ID returned by analyze_video"`
}

// SessionOutput is the output schema for the get_session tool.
type SessionOutput struct {
	AnalyzeOutput
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_video",
		Description: "Fetch a YouTube video's comments, score their sentiment and summarise them. Returns a session ID for follow-up questions.",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question about an analysed video using its summary and the most relevant comments",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_session",
		Description: "Return the stored analysis for a session",
	}, s.handleGetSession)
}

// handleAnalyze handles the analyze_video tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	result, sessionID, err := s.ports.Analysis.Analyze(ctx, input.URL)
	if err != nil {
		return nil, AnalyzeOutput{}, toolError(err)
	}
	return nil, analyzeOutput(sessionID, result), nil
}

// handleAsk handles the ask_question tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Analysis.Answer(ctx, input.SessionID, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: make([]CommentOutput, len(answer.Sources)),
	}
	for i := range answer.Sources {
		output.Sources[i] = commentOutput(answer.Sources[i].Comment)
	}
	return nil, output, nil
}

// handleGetSession handles the get_session tool invocation.
func (s *Server) handleGetSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	session, err := s.ports.Analysis.Session(ctx, input.SessionID)
	if err != nil {
		return nil, SessionOutput{}, toolError(err)
	}
	if session.Result == nil {
		return nil, SessionOutput{}, toolError(fmt.Errorf("%w: session has no result", domain.ErrSessionNotFound))
	}

	return nil, SessionOutput{
		AnalyzeOutput: analyzeOutput(session.ID, session.Result),
		CreatedAt:     session.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func analyzeOutput(sessionID string, result *domain.AnalysisResult) AnalyzeOutput {
	output := AnalyzeOutput{
		SessionID:      sessionID,
		VideoID:        result.Video.ID,
		Title:          result.Video.Title,
		Channel:        result.Video.Channel,
		CommentCount:   len(result.Comments),
		Summary:        result.Summary,
		SentimentStats: result.SentimentStats,
		TopComments:    make([]CommentOutput, len(result.TopComments)),
	}
	for i, c := range result.TopComments {
		output.TopComments[i] = commentOutput(c)
	}
	return output
}

func commentOutput(c domain.Comment) CommentOutput {
	return CommentOutput{
		Author:    c.Author,
		Text:      c.Text,
		LikeCount: c.LikeCount,
		Sentiment: c.Sentiment.Label().String(),
		Compound:  c.Sentiment.Compound,
	}
}
