package mcp

import (
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Analysis runs analyses and answers questions.
	Analysis driving.AnalysisService

	// History lists past analyses. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
