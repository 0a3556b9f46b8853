package analyze

import "errors"

// Error definitions for the analyze view.
var (
	// ErrNoAnalysisService indicates that no analysis service was provided.
	ErrNoAnalysisService = errors.New("analysis service is required")
)
