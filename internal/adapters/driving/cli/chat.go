package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui"
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat [url]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for threadsense.

Given a URL the video is analysed straight away; the result can then be
questioned in a chat view. Without a URL the main menu is shown.

Controls:
  Enter - Analyse / Ask
  c     - Ask questions about the result
  n     - Analyse another video
  Esc   - Back
  ?     - Toggle help
  q     - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(analysisService, historyService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Sessions live for the whole TUI run, so keep the sweeps going
	stop := startBackground(cmd.Context())
	defer stop()

	app.WithContext(cmd.Context())
	if len(args) == 1 {
		app.WithURL(args[0])
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
