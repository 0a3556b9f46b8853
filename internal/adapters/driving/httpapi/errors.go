// Package httpapi serves the analysis pipeline as a JSON HTTP API.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("httpapi: analysis service is required")

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	switch domain.ErrorCode(err) {
	case domain.CodeInvalidURL, domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeNotFound, domain.CodeSessionNotFound:
		return http.StatusNotFound
	case domain.CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case domain.CodeUpstream, domain.CodeGeneration, domain.CodeEmbedding:
		return http.StatusBadGateway
	case domain.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// newErrorResponse builds the body for err. Internal errors are not echoed.
func newErrorResponse(err error) errorResponse {
	code := domain.ErrorCode(err)
	if code == domain.CodeInternal {
		return errorResponse{Error: "internal server error", Code: code}
	}
	return errorResponse{Error: err.Error(), Code: code}
}
