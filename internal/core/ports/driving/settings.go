package driving

import "github.com/custodia-labs/threadsense/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetYouTubeAPIKey stores the YouTube Data API key.
	SetYouTubeAPIKey(apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetSessionBackend configures where sessions are stored.
	SetSessionBackend(backend domain.SessionBackend, address string) error

	// SetAnswerMode selects how follow-up questions are answered.
	SetAnswerMode(mode domain.AnswerMode) error

	// Validate checks that the settings are complete enough to analyse a video.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
