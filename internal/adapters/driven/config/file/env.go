package file

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
)

// Ensure EnvConfigStore implements the interface.
var _ driven.ConfigStore = (*EnvConfigStore)(nil)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// DefaultEnvBindings maps environment variables to config keys.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
func DefaultEnvBindings() map[string]string {
	return map[string]string{
		"YOUTUBE_API_KEY":         "youtube.api_key",
		"THREADSENSE_LLM":         "llm.provider",
		"THREADSENSE_EMBEDDER":    "embedding.provider",
		"OLLAMA_HOST":             "llm.base_url",
		"VALKEY_ADDRESS":          "session.valkey_address",
		"VALKEY_PASSWORD":         "session.valkey_password",
		"THREADSENSE_SESSIONS":    "session.backend",
		"THREADSENSE_SESSION_TTL": "session.ttl",
	}
}

// providerKeyEnv names the API key variable for each provider.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// EnvConfigStore overlays environment variables on a base ConfigStore.
// Reads consult the environment first; writes go to the base store.
// Provider API keys are resolved from the variable matching the configured
// provider, e.g. OPENAI_API_KEY for llm.api_key when llm.provider is openai.
type EnvConfigStore struct {
	base     driven.ConfigStore
	bindings map[string]string
	lookup   func(string) (string, bool)
}

// NewEnvConfigStore wraps base with the given env-to-key bindings.
func NewEnvConfigStore(base driven.ConfigStore, bindings map[string]string) *EnvConfigStore {
	byKey := make(map[string]string, len(bindings))
	for env, key := range bindings {
		byKey[key] = env
	}
	return &EnvConfigStore{base: base, bindings: byKey, lookup: os.LookupEnv}
}

// env returns the overriding environment value for key, if any.
func (s *EnvConfigStore) env(key string) (string, bool) {
	if name, ok := s.bindings[key]; ok {
		if v, ok := s.lookup(name); ok && v != "" {
			return v, true
		}
	}
	var providerKey string
	switch key {
	case "llm.api_key":
		providerKey = "llm.provider"
	case "embedding.api_key":
		providerKey = "embedding.provider"
	default:
		return "", false
	}
	provider := s.GetString(providerKey)
	if provider == "" {
		provider = "openai"
	}
	if name, ok := providerKeyEnv[provider]; ok {
		if v, ok := s.lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Get retrieves a value, preferring the environment.
func (s *EnvConfigStore) Get(key string) (any, bool) {
	if v, ok := s.env(key); ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string value, preferring the environment.
func (s *EnvConfigStore) GetString(key string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer value, preferring the environment.
func (s *EnvConfigStore) GetInt(key string) int {
	if v, ok := s.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return s.base.GetInt(key)
}

// GetBool retrieves a boolean value, preferring the environment.
func (s *EnvConfigStore) GetBool(key string) bool {
	if v, ok := s.env(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return s.base.GetBool(key)
}

// GetStringSlice retrieves a string slice from the base store.
func (s *EnvConfigStore) GetStringSlice(key string) []string {
	return s.base.GetStringSlice(key)
}

// Set stores a value in the base store.
func (s *EnvConfigStore) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the base store.
func (s *EnvConfigStore) Save() error {
	return s.base.Save()
}

// Load reloads the base store.
func (s *EnvConfigStore) Load() error {
	return s.base.Load()
}

// Path returns the base store's file path.
func (s *EnvConfigStore) Path() string {
	return s.base.Path()
}
