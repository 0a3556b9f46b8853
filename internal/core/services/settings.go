package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyYouTubeAPIKey      = "youtube.api_key"
	KeyYouTubeMaxComments = "youtube.max_comments"
	KeyYouTubePageSize    = "youtube.page_size"
	KeyYouTubeRPS         = "youtube.requests_per_second"

	KeyEmbedProvider = "embedding.provider"
	KeyEmbedModel    = "embedding.model"
	KeyEmbedBaseURL  = "embedding.base_url"
	KeyEmbedAPIKey   = "embedding.api_key"

	KeyLLMProvider = "llm.provider"
	KeyLLMModel    = "llm.model"
	KeyLLMBaseURL  = "llm.base_url"
	KeyLLMAPIKey   = "llm.api_key"

	KeyAnalysisTopK           = "analysis.top_k"
	KeyAnalysisTopN           = "analysis.top_n"
	KeyAnalysisSampleSize     = "analysis.prompt_sample_size"
	KeyAnalysisCommentChars   = "analysis.prompt_comment_chars"
	KeyAnalysisBudgetChars    = "analysis.prompt_budget_chars"
	KeyAnalysisEmbedBatchSize = "analysis.embed_batch_size"
	KeyAnalysisTimeout        = "analysis.request_timeout"
	KeyAnalysisAnswerMode     = "analysis.answer_mode"

	KeySessionBackend  = "session.backend"
	KeySessionTTL      = "session.ttl"
	KeySessionCapacity = "session.capacity"
	KeyValkeyAddress   = "session.valkey_address"
	KeyValkeyPassword  = "session.valkey_password"
	KeyValkeyDB        = "session.valkey_db"
	KeySweepSchedule   = "session.sweep_schedule"

	KeyHistoryEnabled   = "history.enabled"
	KeyHistoryRetention = "history.retention"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		YouTube: domain.YouTubeSettings{
			APIKey:            s.configStore.GetString(KeyYouTubeAPIKey),
			MaxComments:       s.getInt(KeyYouTubeMaxComments, d.YouTube.MaxComments),
			PageSize:          s.getInt(KeyYouTubePageSize, d.YouTube.PageSize),
			RequestsPerSecond: s.getFloat(KeyYouTubeRPS, d.YouTube.RequestsPerSecond),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(KeyEmbedProvider, d.Embedding.Provider),
			BaseURL:  s.configStore.GetString(KeyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(KeyLLMProvider, d.LLM.Provider),
			BaseURL:  s.configStore.GetString(KeyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(KeyLLMAPIKey),
		},
		Analysis: domain.AnalysisSettings{
			TopK:               s.getInt(KeyAnalysisTopK, d.Analysis.TopK),
			TopN:               s.getInt(KeyAnalysisTopN, d.Analysis.TopN),
			PromptSampleSize:   s.getInt(KeyAnalysisSampleSize, d.Analysis.PromptSampleSize),
			PromptCommentChars: s.getInt(KeyAnalysisCommentChars, d.Analysis.PromptCommentChars),
			PromptBudgetChars:  s.getInt(KeyAnalysisBudgetChars, d.Analysis.PromptBudgetChars),
			EmbedBatchSize:     s.getInt(KeyAnalysisEmbedBatchSize, d.Analysis.EmbedBatchSize),
			RequestTimeout:     s.getDuration(KeyAnalysisTimeout, d.Analysis.RequestTimeout),
			AnswerMode:         s.getAnswerMode(d.Analysis.AnswerMode),
		},
		Session: domain.SessionSettings{
			Backend:        s.getBackend(d.Session.Backend),
			TTL:            s.getDuration(KeySessionTTL, d.Session.TTL),
			Capacity:       s.getInt(KeySessionCapacity, d.Session.Capacity),
			ValkeyAddress:  s.getString(KeyValkeyAddress, d.Session.ValkeyAddress),
			ValkeyPassword: s.configStore.GetString(KeyValkeyPassword),
			ValkeyDB:       s.configStore.GetInt(KeyValkeyDB),
			SweepSchedule:  s.getString(KeySweepSchedule, d.Session.SweepSchedule),
		},
		History: domain.HistorySettings{
			Enabled:   s.getBool(KeyHistoryEnabled, d.History.Enabled),
			Retention: s.getDuration(KeyHistoryRetention, d.History.Retention),
		},
	}

	// Models default per provider, so a provider switch without a model
	// does not inherit the previous provider's model.
	settings.Embedding.Model = s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(KeyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyYouTubeMaxComments, settings.YouTube.MaxComments},
		{KeyYouTubePageSize, settings.YouTube.PageSize},
		{KeyYouTubeRPS, settings.YouTube.RequestsPerSecond},
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyAnalysisTopK, settings.Analysis.TopK},
		{KeyAnalysisTopN, settings.Analysis.TopN},
		{KeyAnalysisSampleSize, settings.Analysis.PromptSampleSize},
		{KeyAnalysisCommentChars, settings.Analysis.PromptCommentChars},
		{KeyAnalysisBudgetChars, settings.Analysis.PromptBudgetChars},
		{KeyAnalysisEmbedBatchSize, settings.Analysis.EmbedBatchSize},
		{KeyAnalysisTimeout, settings.Analysis.RequestTimeout.String()},
		{KeyAnalysisAnswerMode, settings.Analysis.AnswerMode.String()},
		{KeySessionBackend, settings.Session.Backend.String()},
		{KeySessionTTL, settings.Session.TTL.String()},
		{KeySessionCapacity, settings.Session.Capacity},
		{KeyValkeyAddress, settings.Session.ValkeyAddress},
		{KeyValkeyDB, settings.Session.ValkeyDB},
		{KeySweepSchedule, settings.Session.SweepSchedule},
		{KeyHistoryEnabled, settings.History.Enabled},
		{KeyHistoryRetention, settings.History.Retention.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when set, so an empty value never clobbers a stored key.
	secrets := []struct {
		key   string
		value string
	}{
		{KeyYouTubeAPIKey, settings.YouTube.APIKey},
		{KeyEmbedAPIKey, settings.Embedding.APIKey},
		{KeyLLMAPIKey, settings.LLM.APIKey},
		{KeyValkeyPassword, settings.Session.ValkeyPassword},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetYouTubeAPIKey stores the YouTube Data API key.
func (s *SettingsService) SetYouTubeAPIKey(apiKey string) error {
	if apiKey == "" {
		return errors.New("API key required for YouTube")
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.YouTube.APIKey = apiKey
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetSessionBackend configures where sessions are stored.
func (s *SettingsService) SetSessionBackend(backend domain.SessionBackend, address string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid session backend: %s", backend)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Session.Backend = backend
	if address != "" {
		settings.Session.ValkeyAddress = address
	}
	return s.Save(settings)
}

// SetAnswerMode selects how follow-up questions are answered.
func (s *SettingsService) SetAnswerMode(mode domain.AnswerMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid answer mode: %s", mode)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Analysis.AnswerMode = mode
	return s.Save(settings)
}

// Validate checks that the settings are complete enough to analyse a video.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.YouTube.IsConfigured() {
		errs = append(errs, errors.New("YouTube API key is not configured"))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider))
	}
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if settings.Session.TTL <= 0 {
		errs = append(errs, errors.New("session TTL must be positive"))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a configured URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

// getDuration reads a Go duration string such as "30m".
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.SessionBackend) domain.SessionBackend {
	backend := domain.SessionBackend(s.configStore.GetString(KeySessionBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getAnswerMode(defaultVal domain.AnswerMode) domain.AnswerMode {
	mode := domain.AnswerMode(s.configStore.GetString(KeyAnalysisAnswerMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
