package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/views/analyze"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView    *menu.View
	analyzeView *analyze.View
	chatView    *chat.View
	historyView *history.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// initialURL is analysed as soon as the program starts.
	initialURL string

	// sessionID and result belong to the most recent analysis.
	sessionID string
	result    *domain.AnalysisResult

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s),
		analyzeView: analyze.NewView(s, km, ports.Analysis),
		chatView:    chat.NewView(s, km, ports.Analysis),
		historyView: history.NewView(s, ports.History),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.analyzeView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// WithURL makes the app analyse url on start.
func (a *App) WithURL(url string) *App {
	a.initialURL = url
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("threadsense"),
	}
	if a.initialURL != "" {
		url := a.initialURL
		cmds = append(cmds, func() tea.Msg {
			return messages.AnalysisRequested{URL: url}
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateActive(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AnalysisRequested:
		a.currentView = messages.ViewAnalyze
		a.analyzeView, cmd = a.analyzeView.Update(msg)
		return a, cmd

	case messages.AnalysisCompleted:
		a.analyzeView, cmd = a.analyzeView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
		} else if msg.Result != nil {
			a.err = nil
			a.sessionID = msg.SessionID
			a.result = msg.Result
			a.menuView.SetSession(msg.Result.Video.Title)
		}
		return a, cmd

	case spinner.TickMsg:
		a.analyzeView, cmd = a.analyzeView.Update(msg)
		return a, cmd

	case messages.ChatOpened:
		a.sessionID = msg.SessionID
		a.result = msg.Result
		if msg.Result != nil {
			a.menuView.SetSession(msg.Result.Video.Title)
		}
		a.currentView = messages.ViewChat
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.AnswerCompleted:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.RecordSelected:
		return a, a.openRecord(msg.Record)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a.updateActive(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a.updateActive(msg)
}

// updateActive forwards msg to the active view.
func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAnalyze:
		a.analyzeView, cmd = a.analyzeView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}

	return a, cmd
}

// switchTo activates view and runs its initialisation.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	switch view {
	case messages.ViewChat:
		if a.sessionID == "" {
			return nil
		}
		a.currentView = view
		if a.chatView.SessionID() != a.sessionID {
			a.chatView.Open(a.sessionID, a.result)
		}
		return a.chatView.Init()
	case messages.ViewAnalyze:
		a.currentView = view
		return a.analyzeView.Init()
	case messages.ViewHistory:
		a.currentView = view
		return a.historyView.Init()
	case messages.ViewMenu, messages.ViewHelp:
		a.currentView = view
	}
	return nil
}

// openRecord reopens a past analysis. A live session goes straight to the
// chat view; an expired one is analysed again.
func (a *App) openRecord(record domain.AnalysisRecord) tea.Cmd {
	analysis := a.ports.Analysis
	ctx := a.ctx
	return func() tea.Msg {
		if record.SessionID != "" {
			session, err := analysis.Session(ctx, record.SessionID)
			if err == nil && session.Result != nil {
				return messages.ChatOpened{SessionID: session.ID, Result: session.Result}
			}
		}
		url := record.URL
		if url == "" {
			url = record.VideoID
		}
		return messages.AnalysisRequested{URL: url}
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAnalyze:
		return a.analyzeView.View()
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Analyse:
  (type)      Enter a YouTube URL or video ID
  enter       Start analysis
  c           Ask questions about the result
  n           Analyse another video

Ask:
  (type)      Enter a question
  enter       Send
  pgup/pgdn   Scroll the conversation

History:
  enter       Reopen (re-analyses expired sessions)
  r           Reload

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SessionID returns the session of the most recent analysis.
func (a *App) SessionID() string {
	return a.sessionID
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.analyzeView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
}
