// Package mcp provides an MCP (Model Context Protocol) server adapter for
// ThreadSense. It lets AI assistants analyse a video's comments and ask
// follow-up questions against the resulting session.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

// toolError prefixes err with its stable code so clients can branch on it.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.ErrorCode(err), err)
}
