package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoAnalysisService indicates that no analysis service was provided.
	ErrNoAnalysisService = errors.New("analysis service is required")

	// ErrNoSession indicates that no video has been analysed yet.
	ErrNoSession = errors.New("analyse a video first")
)
