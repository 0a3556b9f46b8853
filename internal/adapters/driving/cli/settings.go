package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

var errNoSettingsService = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the YouTube API key, AI providers, the session store
and other options.

Use subcommands to configure specific settings or run the interactive wizard.
Environment variables such as YOUTUBE_API_KEY and OPENAI_API_KEY override
the stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Set the YouTube Data API key",
	Long: `Set the YouTube Data API v3 key used to fetch video metadata and comments.
Create one in the Google Cloud console with the YouTube Data API enabled.`,
	RunE: runSettingsYouTube,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index comments for questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for summaries and answers.`,
	RunE:  runSettingsLLM,
}

var settingsSessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Configure session store",
	Long: `Choose where analysis sessions are kept.

Available backends:
  memory - In-process, lost when the process exits
  valkey - A Valkey or Redis server, shared between invocations`,
	RunE: runSettingsSession,
}

var settingsAnswersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Choose how questions are answered",
	Long: `Choose the strategy used by 'ask' and the interactive view.

Available modes:
  simple - Embed the question once and answer from the closest comments
  agent  - Let the LLM plan the search, rerank candidates and look again
           when the first comments do not cover the question`,
	RunE: runSettingsAnswers,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsYouTubeCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSessionCmd)
	settingsCmd.AddCommand(settingsAnswersCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[YouTube]")
	if settings.YouTube.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.YouTube.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Max comments: %d\n", settings.YouTube.MaxComments)
	cmd.Printf("  Requests per second: %g\n", settings.YouTube.RequestsPerSecond)
	cmd.Println()

	printProvider(cmd, "Embedding", settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	printProvider(cmd, "LLM", settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Println("[Analysis]")
	cmd.Printf("  Top comments: %d\n", settings.Analysis.TopN)
	cmd.Printf("  Comments per question: %d\n", settings.Analysis.TopK)
	cmd.Printf("  Request timeout: %s\n", settings.Analysis.RequestTimeout)
	cmd.Printf("  Answer mode: %s\n", settings.Analysis.AnswerMode)
	cmd.Println()

	cmd.Println("[Sessions]")
	cmd.Printf("  Backend: %s\n", settings.Session.Backend)
	if settings.Session.Backend == domain.SessionBackendValkey {
		cmd.Printf("  Address: %s\n", settings.Session.ValkeyAddress)
	}
	cmd.Printf("  TTL: %s\n", settings.Session.TTL)
	cmd.Println()

	cmd.Println("[History]")
	if settings.History.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Retention: %s\n", settings.History.Retention)
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'threadsense settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, section string, provider domain.AIProvider,
	model, baseURL, apiKey string, configured bool) {
	cmd.Printf("[%s]\n", section)
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	cmd.Println("ThreadSense Settings Wizard")
	cmd.Println("===========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: YouTube Data API")
	cmd.Println("------------------------")
	if err := configureYouTube(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Println("The LLM writes the summary and answers questions.")
	cmd.Println()
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Embeddings find the comments most relevant to a question.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsYouTube(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureYouTube(cmd, reader)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func runSettingsAnswers(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Answer Mode")
	modes := []domain.AnswerMode{domain.AnswerModeSimple, domain.AnswerModeAgent}
	for i, m := range modes {
		cmd.Printf("  %d. %s\n", i+1, m)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(modes), 1)
	selected := modes[idx-1]

	if err := settingsService.SetAnswerMode(selected); err != nil {
		return fmt.Errorf("failed to set answer mode: %w", err)
	}
	cmd.Printf("Answer mode set to: %s\n", selected)
	return nil
}

func runSettingsSession(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Session Backend")
	backends := []domain.SessionBackend{domain.SessionBackendMemory, domain.SessionBackendValkey}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	selected := backends[idx-1]

	var address string
	if selected == domain.SessionBackendValkey {
		current := domain.DefaultAppSettings().Session.ValkeyAddress
		if settings, err := settingsService.Get(); err == nil && settings.Session.ValkeyAddress != "" {
			current = settings.Session.ValkeyAddress
		}
		cmd.Printf("Enter Valkey address [%s]: ", current)
		address = readLine(reader)
		if address == "" {
			address = current
		}
	}

	if err := settingsService.SetSessionBackend(selected, address); err != nil {
		return fmt.Errorf("failed to configure session backend: %w", err)
	}

	if address != "" {
		cmd.Printf("Session backend set to: %s (%s)\n", selected, address)
	} else {
		cmd.Printf("Session backend set to: %s\n", selected)
	}
	return nil
}

func configureYouTube(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Print("Enter YouTube Data API key: ")
	apiKey := readPassword(reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetYouTubeAPIKey(apiKey); err != nil {
		return fmt.Errorf("failed to set YouTube API key: %w", err)
	}

	cmd.Printf("YouTube API key set: %s\n\n", maskAPIKey(apiKey))
	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// stdin is the terminal checked for hidden password input.
var stdin io.Reader = os.Stdin

func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
