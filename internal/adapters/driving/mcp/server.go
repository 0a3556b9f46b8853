package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/threadsense/internal/logger"
)

// DefaultVersion is reported when the build sets no version.
const DefaultVersion = "dev"

// HTTP transport settings.
const (
	// EndpointPath is where the streamable HTTP transport is mounted.
	EndpointPath = "/mcp"

	keepAlive       = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

const baseInstructions = `ThreadSense analyses the comment section of a YouTube video.

Call analyze_video with a video URL or 11-character ID first. It returns a
summary, the sentiment split and a session_id. Sessions expire after a
while; analyse the video again when ask_question or get_session reports
that the session was not found.

Use ask_question with that session_id for follow-up questions. Answers are
grounded in the comments and list the comments they used as sources.`

const historyInstructions = `

Past analyses are listed by the threadsense://history resource.`

// Server exposes comment analysis to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates an MCP server over the given ports. An empty version
// reports DefaultVersion.
func NewServer(ports *Ports, version string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if version == "" {
		version = DefaultVersion
	}

	impl := &mcp.Implementation{
		Name:    "threadsense",
		Title:   "ThreadSense comment analysis",
		Version: version,
	}
	opts := &mcp.ServerOptions{
		Instructions: instructions(ports),
		KeepAlive:    keepAlive,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, opts),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions describes the tool workflow. The history resource is only
// mentioned when history is enabled.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString(baseInstructions)
	if ports.History != nil {
		b.WriteString(historyInstructions)
	}
	return b.String()
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler mounted at EndpointPath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil))
	return mux
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s%s", addr, EndpointPath)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
