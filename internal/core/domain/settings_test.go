package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"openai is valid", AIProviderOpenAI, true},
		{"gemini is valid", AIProviderGemini, true},
		{"anthropic is valid", AIProviderAnthropic, true},
		{"ollama is valid", AIProviderOllama, true},
		{"empty is invalid", AIProvider(""), false},
		{"unknown is invalid", AIProvider("mistral"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Google Gemini (cloud)", AIProviderGemini.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty provider", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderGemini}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestSessionBackend_IsValid(t *testing.T) {
	assert.True(t, SessionBackendMemory.IsValid())
	assert.True(t, SessionBackendValkey.IsValid())
	assert.False(t, SessionBackend("redis").IsValid())
}

func TestAnswerMode_IsValid(t *testing.T) {
	assert.True(t, AnswerModeSimple.IsValid())
	assert.True(t, AnswerModeAgent.IsValid())
	assert.False(t, AnswerMode("").IsValid())
	assert.False(t, AnswerMode("chain").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 500, s.YouTube.MaxComments)
	assert.Equal(t, 100, s.YouTube.PageSize)
	assert.False(t, s.YouTube.IsConfigured())
	assert.Equal(t, 5, s.Analysis.TopK)
	assert.Equal(t, 5, s.Analysis.TopN)
	assert.Equal(t, AnswerModeSimple, s.Analysis.AnswerMode)
	assert.Equal(t, 30*time.Minute, s.Session.TTL)
	assert.Equal(t, SessionBackendMemory, s.Session.Backend)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.False(t, s.LLM.IsConfigured(), "no API key by default")
}

func TestDefaultModels_CoverProviders(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		model, ok := DefaultEmbeddingModels()[p]
		assert.True(t, ok, "missing default embedding model for %s", p)
		_, ok = EmbeddingDimensions()[model]
		assert.True(t, ok, "missing dimensions for %s", model)
	}
	for _, p := range AllLLMProviders() {
		_, ok := DefaultLLMModels()[p]
		assert.True(t, ok, "missing default llm model for %s", p)
	}
}
