package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI and Gemini).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI, Anthropic and Gemini).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// YouTubeSettings configures the comment fetcher.
type YouTubeSettings struct {
	// APIKey is the YouTube Data API key.
	APIKey string

	// MaxComments caps the number of top-level comments fetched per video.
	MaxComments int

	// PageSize is the page size requested from the API (at most 100).
	PageSize int

	// RequestsPerSecond bounds the request rate against the API.
	RequestsPerSecond float64
}

// IsConfigured returns true if an API key is present.
func (y YouTubeSettings) IsConfigured() bool {
	return y.APIKey != ""
}

// AnalysisSettings tunes the analysis pipeline.
type AnalysisSettings struct {
	// TopK is the number of comments retrieved for each question.
	TopK int

	// TopN is the number of most-liked comments reported with a result.
	TopN int

	// PromptSampleSize is the maximum number of comments placed in the summary prompt.
	PromptSampleSize int

	// PromptCommentChars truncates each sampled comment to this many runes.
	PromptCommentChars int

	// PromptBudgetChars caps the sampled comment block, in runes.
	PromptBudgetChars int

	// EmbedBatchSize is the number of texts sent per embedding request.
	EmbedBatchSize int

	// RequestTimeout bounds a whole analyze request.
	RequestTimeout time.Duration

	// AnswerMode selects how follow-up questions are answered.
	AnswerMode AnswerMode
}

// AnswerMode selects the question answering strategy.
type AnswerMode string

// Available answer modes.
const (
	// AnswerModeSimple embeds the question once and answers from the top matches.
	AnswerModeSimple AnswerMode = "simple"

	// AnswerModeAgent lets the LLM plan the retrieval, rerank candidates and
	// ask for more comments before answering.
	AnswerModeAgent AnswerMode = "agent"
)

// IsValid returns true if the answer mode is recognised.
func (m AnswerMode) IsValid() bool {
	return m == AnswerModeSimple || m == AnswerModeAgent
}

// String returns the string representation.
func (m AnswerMode) String() string {
	return string(m)
}

// SessionBackend selects where sessions are held.
type SessionBackend string

// Available session backends.
const (
	// SessionBackendMemory keeps sessions in process memory.
	SessionBackendMemory SessionBackend = "memory"

	// SessionBackendValkey keeps sessions in a Valkey (or Redis) server.
	SessionBackendValkey SessionBackend = "valkey"
)

// IsValid returns true if the backend is recognised.
func (b SessionBackend) IsValid() bool {
	return b == SessionBackendMemory || b == SessionBackendValkey
}

// String returns the string representation.
func (b SessionBackend) String() string {
	return string(b)
}

// SessionSettings configures the session store.
type SessionSettings struct {
	Backend SessionBackend

	// TTL is how long a session lives after creation.
	TTL time.Duration

	// Capacity bounds the number of in-memory sessions.
	Capacity int

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyDB       int

	// SweepSchedule is the cron spec for the expiry sweep.
	SweepSchedule string
}

// HistorySettings configures the analysis history database.
type HistorySettings struct {
	// Enabled turns history recording on.
	Enabled bool

	// Retention is how long history rows are kept.
	Retention time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	YouTube   YouTubeSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Analysis  AnalysisSettings
	Session   SessionSettings
	History   HistorySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Provider credentials are left empty and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		YouTube: YouTubeSettings{
			MaxComments:       500,
			PageSize:          100,
			RequestsPerSecond: 5,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Analysis: AnalysisSettings{
			TopK:               5,
			TopN:               5,
			PromptSampleSize:   50,
			PromptCommentChars: 500,
			PromptBudgetChars:  12000,
			EmbedBatchSize:     256,
			RequestTimeout:     60 * time.Second,
			AnswerMode:         AnswerModeSimple,
		},
		Session: SessionSettings{
			Backend:       SessionBackendMemory,
			TTL:           30 * time.Minute,
			Capacity:      1000,
			ValkeyAddress: "127.0.0.1:6379",
			SweepSchedule: "@every 1m",
		},
		History: HistorySettings{
			Enabled:   true,
			Retention: 30 * 24 * time.Hour,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderOllama,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4.1-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004":   768,
		"gemini-embedding-001": 3072,
	}
}
