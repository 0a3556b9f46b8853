package domain

import "errors"

// Analysis errors are the typed failures surfaced by Analyze and Answer.
// Adapters wrap them with %w so callers can match with errors.Is.
var (
	// ErrInvalidURL indicates the input is not a recognisable YouTube video URL.
	// It is detected before any network call is made.
	ErrInvalidURL = errors.New("invalid video url")

	// ErrNotFound indicates the video does not exist or has comments disabled.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded indicates the comment provider reported a quota or rate limit.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUpstream indicates the comment provider failed or returned a malformed response.
	ErrUpstream = errors.New("upstream error")

	// ErrTimeout indicates a network call exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrGeneration indicates the completion call failed or returned empty content.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbedding indicates an embedding call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrSessionNotFound indicates the session is unknown or has expired.
	ErrSessionNotFound = errors.New("session not found")
)

// Infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrSessionConflict indicates a fresh session ID collided with an existing one.
	ErrSessionConflict = errors.New("session id conflict")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// IsAnalysisError reports whether err matches one of the typed analysis failures.
func IsAnalysisError(err error) bool {
	for _, target := range []error{
		ErrInvalidURL, ErrNotFound, ErrQuotaExceeded, ErrUpstream, ErrTimeout,
		ErrGeneration, ErrEmbedding, ErrSessionNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Stable error codes reported by the HTTP and MCP surfaces.
const (
	CodeInvalidURL      = "invalid_url"
	CodeNotFound        = "not_found"
	CodeQuotaExceeded   = "quota_exceeded"
	CodeUpstream        = "upstream_error"
	CodeTimeout         = "timeout"
	CodeGeneration      = "generation_error"
	CodeEmbedding       = "embedding_error"
	CodeSessionNotFound = "session_not_found"
	CodeInvalidInput    = "invalid_input"
	CodeInternal        = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrSessionNotFound, CodeSessionNotFound},
	{ErrInvalidURL, CodeInvalidURL},
	{ErrNotFound, CodeNotFound},
	{ErrQuotaExceeded, CodeQuotaExceeded},
	{ErrTimeout, CodeTimeout},
	{ErrUpstream, CodeUpstream},
	{ErrGeneration, CodeGeneration},
	{ErrEmbedding, CodeEmbedding},
	{ErrInvalidInput, CodeInvalidInput},
}

// ErrorCode returns the stable code for err, or CodeInternal.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
