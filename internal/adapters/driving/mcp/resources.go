package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for ThreadSense resources.
const uriScheme = "threadsense://"

// historyLimit bounds the history resource.
const historyLimit = 50

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently analysed videos",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session-summary",
		Description: "Summary of a live analysis session",
		MIMEType:    "text/markdown",
	}, s.handleSessionResource)
}

// handleHistoryResource returns recent analyses, or an empty list when
// history is disabled.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	text := "[]"
	if s.ports.History != nil {
		records, err := s.ports.History.Recent(ctx, historyLimit)
		if err != nil {
			return nil, fmt.Errorf("listing history: %w", err)
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling history: %w", err)
		}
		text = string(data)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}

// handleSessionResource renders a session's summary as markdown.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	session, err := s.ports.Analysis.Session(ctx, sessionID)
	if err != nil || session.Result == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result := session.Result
	stats := result.SentimentStats
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", result.Video.Title)
	fmt.Fprintf(&b, "%s\n\n", result.Video.URL)
	fmt.Fprintf(&b, "Comments analysed: %d\n\n", stats.Total)
	fmt.Fprintf(&b, "Sentiment: %.1f%% positive, %.1f%% negative, %.1f%% neutral\n\n",
		stats.Positive, stats.Negative, stats.Neutral)
	b.WriteString("## Summary\n\n")
	b.WriteString(strings.TrimSpace(result.Summary))
	b.WriteString("\n")

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		}},
	}, nil
}

// extractSessionID extracts the session ID from threadsense://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
