// Package domain defines the core business entities for threadsense.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Comment: A top-level comment with its sentiment score
//   - VideoInfo: A metadata snapshot of the analysed video
//   - AnalysisResult: Summary, sentiment statistics and top comments
//   - EmbeddingIndex: One vector per comment, built once per session
//   - Session: The time-limited bundle of one video's artifacts
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
