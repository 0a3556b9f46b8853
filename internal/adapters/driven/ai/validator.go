package ai

import (
	"context"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations by pinging them.
type ConfigValidator struct {
	ctx context.Context
}

// NewConfigValidator creates a new AI config validator. Pings inherit ctx
// and are additionally bounded by pingTimeout.
func NewConfigValidator(ctx context.Context) *ConfigValidator {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ConfigValidator{ctx: ctx}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(v.ctx, config)
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(v.ctx, config)
}
