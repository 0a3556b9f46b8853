// Command threadsense analyses YouTube comment sections.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/threadsense/internal/adapters/driven/ai"
	"github.com/custodia-labs/threadsense/internal/adapters/driven/config/file"
	"github.com/custodia-labs/threadsense/internal/adapters/driven/sentiment/vader"
	"github.com/custodia-labs/threadsense/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/threadsense/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/threadsense/internal/adapters/driven/storage/valkey"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/cli"
	"github.com/custodia-labs/threadsense/internal/connectors/youtube"
	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/core/services"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := file.LoadDotEnv(); err != nil {
		logger.Warn("loading .env: %v", err)
	}

	configDir, err := file.DefaultDir()
	if err != nil {
		return fmt.Errorf("locating config directory: %w", err)
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	config := file.NewEnvConfigStore(configStore, file.DefaultEnvBindings())

	validator := ai.NewConfigValidator(ctx)
	settingsService := services.NewSettingsService(config, validator)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// AI providers
	aiServices := ai.Init(ctx, settings, false)
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Debug("AI: %s", w)
	}

	// Comment fetcher. Left unset without an API key; analyses then fail
	// with an upstream error naming the missing key.
	var fetcher driven.CommentFetcher
	if yt, err := youtube.NewFetcher(ctx, youtube.ConfigFromSettings(settings.YouTube)); err != nil {
		logger.Debug("YouTube: %v", err)
	} else {
		fetcher = yt
	}

	sessions := openSessionStore(ctx, settings)
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Warn("closing session store: %v", err)
		}
	}()

	analysis := services.NewAnalysisService(
		fetcher,
		vader.NewScorer(),
		aiServices.LLMService,
		aiServices.EmbeddingService,
		sessions,
		services.AnalysisConfigFromSettings(settings),
	)

	var background []func(ctx context.Context) error

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), services.DefaultPrompts())
	if err != nil {
		logger.Warn("prompt templates: %v", err)
	} else {
		analysis.SetPromptStore(prompts)
		background = append(background, func(ctx context.Context) error {
			return prompts.Watch(ctx, func(name string) {
				logger.Info("Reloaded prompt %s", name)
			})
		})
	}

	svc := &cli.Services{
		Analysis:   analysis,
		Settings:   settingsService,
		Background: background,
	}

	var historyStore driven.HistoryStore
	if settings.History.Enabled {
		store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
		if err != nil {
			logger.Warn("history disabled: %v", err)
		} else {
			defer store.Close()
			historyStore = store
			analysis.SetHistoryStore(store)
			svc.History = services.NewHistoryService(store)
		}
	}

	svc.Scheduler = services.NewScheduler(services.SchedulerConfigFromSettings(settings), sessions, historyStore)

	cli.SetServices(svc)
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

// openSessionStore returns the configured session store, falling back to
// memory when Valkey is unreachable.
func openSessionStore(ctx context.Context, settings *domain.AppSettings) driven.SessionStore {
	cfg := settings.Session
	memoryStore := func() driven.SessionStore {
		return memory.NewSessionStore(memory.SessionStoreConfig{
			TTL:      cfg.TTL,
			Capacity: cfg.Capacity,
		})
	}

	if cfg.Backend != domain.SessionBackendValkey {
		return memoryStore()
	}

	store, err := valkey.NewSessionStore(ctx, valkey.Config{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		logger.Warn("valkey unavailable, keeping sessions in memory: %v", err)
		return memoryStore()
	}
	logger.Debug("Sessions stored in valkey at %s", cfg.ValkeyAddress)
	return store
}
