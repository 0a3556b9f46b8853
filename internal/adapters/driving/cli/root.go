// Package cli provides the cobra command tree for threadsense.
package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// Services holds everything the commands need. Only Analysis is required
// for the analysis commands; the rest may be nil.
type Services struct {
	Analysis  driving.AnalysisService
	History   driving.HistoryService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler

	// Background tasks run alongside long-lived commands (chat, serve,
	// mcp serve) and stop when the command returns.
	Background []func(ctx context.Context) error
}

var (
	analysisService driving.AnalysisService
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	background      []func(ctx context.Context) error

	version = "dev"

	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "threadsense",
	Short: "Analyse and question YouTube comment sections",
	Long: `threadsense fetches the comments of a YouTube video, scores their sentiment,
summarises the discussion with an LLM and lets you ask follow-up questions
answered from the most relevant comments.

Get started:
  threadsense settings wizard
  threadsense analyze https://www.youtube.com/watch?v=dQw4w9WgXcQ
  threadsense chat https://youtu.be/dQw4w9WgXcQ`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// SetServices injects the core services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	analysisService = s.Analysis
	historyService = s.History
	settingsService = s.Settings
	scheduler = s.Scheduler
	background = s.Background
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// errNoAnalysisService is returned when SetServices was not given an
// analysis service.
var errNoAnalysisService = errors.New("analysis service not configured")

// startBackground runs the scheduler and background tasks until the
// returned stop function is called.
func startBackground(ctx context.Context) (stop func()) {
	if scheduler == nil && len(background) == 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	if scheduler != nil {
		sched := scheduler
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				// Scheduler errors shouldn't block the command
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
	}

	for _, task := range background {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("background task stopped: %v", err)
			}
		}()
	}

	return func() {
		cancel()
		if scheduler != nil {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}
		wg.Wait()
	}
}
