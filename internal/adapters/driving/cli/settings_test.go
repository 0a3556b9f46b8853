package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range settingsCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"show", "wizard", "youtube", "embedding", "llm", "session", "answers"} {
		assert.True(t, names[want], "settings %s should be registered", want)
	}
}

func TestSettingsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testSvc.settings.settings.YouTube.APIKey = "AIzaSyExampleKey1234"
	testSvc.settings.settings.LLM.APIKey = "sk-proj-abcdefgh"

	out, err := execute("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[YouTube]")
	assert.Contains(t, out, "API Key: AIza...1234")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Model: gpt-4.1-mini")
	assert.Contains(t, out, "API Key: sk-p...efgh")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Backend: memory")
	assert.Contains(t, out, "Answer mode: simple")
	assert.Contains(t, out, "Enabled: yes")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testSvc.settings.validateErr = errors.New("YouTube API key is not set")

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: YouTube API key is not set")
	assert.Contains(t, out, "threadsense settings wizard")
}

func TestSettingsShow_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute("settings", "show")

	assert.ErrorIs(t, err, errNoSettingsService)
}

func TestSettingsYouTube(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("AIzaSyExampleKey1234\n"))

	out, err := execute("settings", "youtube")

	require.NoError(t, err)
	assert.Equal(t, "AIzaSyExampleKey1234", testSvc.settings.settings.YouTube.APIKey)
	assert.Contains(t, out, "YouTube API key set: AIza...1234")
}

func TestSettingsYouTube_EmptyKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := execute("settings", "youtube")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsLLM(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	// Anthropic, default model, key
	rootCmd.SetIn(strings.NewReader("3\n\nsk-ant-0123456789\n"))

	out, err := execute("settings", "llm")

	require.NoError(t, err)
	llm := testSvc.settings.settings.LLM
	assert.Equal(t, domain.AIProviderAnthropic, llm.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], llm.Model)
	assert.Equal(t, "sk-ant-0123456789", llm.APIKey)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsEmbedding_LocalNeedsNoKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	// Ollama with a custom model
	rootCmd.SetIn(strings.NewReader("3\nmxbai-embed-large\n"))

	_, err := execute("settings", "embedding")

	require.NoError(t, err)
	embedding := testSvc.settings.settings.Embedding
	assert.Equal(t, domain.AIProviderOllama, embedding.Provider)
	assert.Equal(t, "mxbai-embed-large", embedding.Model)
	assert.Empty(t, embedding.APIKey)
}

func TestSettingsEmbedding_ValidationFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testSvc.settings.pingErr = errors.New("connection refused")
	rootCmd.SetIn(strings.NewReader("3\n\n"))

	out, err := execute("settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding configuration validation failed")
	assert.Contains(t, out, "FAILED: connection refused")
}

func TestSettingsSession(t *testing.T) {
	t.Run("valkey with address", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()
		rootCmd.SetIn(strings.NewReader("2\ncache:6380\n"))

		out, err := execute("settings", "session")

		require.NoError(t, err)
		assert.Equal(t, domain.SessionBackendValkey, testSvc.settings.settings.Session.Backend)
		assert.Equal(t, "cache:6380", testSvc.settings.settings.Session.ValkeyAddress)
		assert.Contains(t, out, "Session backend set to: valkey (cache:6380)")
	})

	t.Run("valkey keeps current address", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()
		rootCmd.SetIn(strings.NewReader("2\n\n"))

		_, err := execute("settings", "session")

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6379", testSvc.settings.settings.Session.ValkeyAddress)
	})

	t.Run("memory", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()
		testSvc.settings.settings.Session.Backend = domain.SessionBackendValkey
		rootCmd.SetIn(strings.NewReader("1\n"))

		out, err := execute("settings", "session")

		require.NoError(t, err)
		assert.Equal(t, domain.SessionBackendMemory, testSvc.settings.settings.Session.Backend)
		assert.Contains(t, out, "Session backend set to: memory\n")
	})
}

func TestSettingsAnswers(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n"))

	out, err := execute("settings", "answers")

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerModeAgent, testSvc.settings.settings.Analysis.AnswerMode)
	assert.Contains(t, out, "Answer mode set to: agent")
}

func TestSettingsWizard(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	input := strings.Join([]string{
		"AIzaSyExampleKey1234",
		"1", "", "sk-llm-0123456789",
		"2", "", "gemini-0123456789",
	}, "\n") + "\n"
	rootCmd.SetIn(strings.NewReader(input))

	out, err := execute("settings", "wizard")

	require.NoError(t, err)
	s := testSvc.settings.settings
	assert.Equal(t, "AIzaSyExampleKey1234", s.YouTube.APIKey)
	assert.Equal(t, domain.AIProviderOpenAI, s.LLM.Provider)
	assert.Equal(t, "sk-llm-0123456789", s.LLM.APIKey)
	assert.Equal(t, domain.AIProviderGemini, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-004", s.Embedding.Model)
	assert.Contains(t, out, "All settings are valid and saved.")
}
