package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidURL", ErrInvalidURL},
		{"ErrNotFound", ErrNotFound},
		{"ErrQuotaExceeded", ErrQuotaExceeded},
		{"ErrUpstream", ErrUpstream},
		{"ErrTimeout", ErrTimeout},
		{"ErrGeneration", ErrGeneration},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrSessionNotFound", ErrSessionNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrSessionConflict", ErrSessionConflict},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappedMatch(t *testing.T) {
	wrapped := fmt.Errorf("fetch comments: %w", ErrQuotaExceeded)

	assert.True(t, errors.Is(wrapped, ErrQuotaExceeded))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestIsAnalysisError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid url", ErrInvalidURL, true},
		{"wrapped timeout", fmt.Errorf("fetch: %w", ErrTimeout), true},
		{"session not found", ErrSessionNotFound, true},
		{"invalid input", ErrInvalidInput, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnalysisError(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidURL, CodeInvalidURL},
		{fmt.Errorf("fetch: %w", ErrNotFound), CodeNotFound},
		{ErrQuotaExceeded, CodeQuotaExceeded},
		{fmt.Errorf("%w: %w", ErrTimeout, errors.New("deadline")), CodeTimeout},
		{ErrUpstream, CodeUpstream},
		{ErrGeneration, CodeGeneration},
		{ErrEmbedding, CodeEmbedding},
		{ErrSessionNotFound, CodeSessionNotFound},
		{ErrInvalidInput, CodeInvalidInput},
		{errors.New("boom"), CodeInternal},
		{nil, CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}
}
