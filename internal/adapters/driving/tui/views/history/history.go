// Package history provides the past analyses view for the TUI.
package history

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
)

// DefaultLimit is the number of records loaded.
const DefaultLimit = 50

// ErrHistoryDisabled is shown when no history service is configured.
var ErrHistoryDisabled = errors.New("history is disabled")

// View lists past analyses.
type View struct {
	styles         *styles.Styles
	list           *list.RecordList
	historyService driving.HistoryService
	ctx            context.Context

	width   int
	height  int
	loading bool
	err     error
}

// NewView creates a new history view. historyService may be nil.
func NewView(s *styles.Styles, historyService driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:         s,
		list:           list.NewRecordList(s),
		historyService: historyService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the records.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.loadRecords()
}

func (v *View) loadRecords() tea.Cmd {
	return func() tea.Msg {
		if v.historyService == nil {
			return messages.HistoryLoaded{Err: ErrHistoryDisabled}
		}
		records, err := v.historyService.Recent(v.ctx, DefaultLimit)
		return messages.HistoryLoaded{Records: records, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		v.list.SetRecords(msg.Records)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "enter":
			record := v.list.SelectedRecord()
			if record == nil {
				return v, nil
			}
			selected := *record
			return v, func() tea.Msg {
				return messages.RecordSelected{Record: selected}
			}
		case "r":
			return v, v.Init()
		}
		v.list, _ = v.list.Update(msg)
		return v, nil
	}

	return v, nil
}

// View renders the history view.
func (v *View) View() string {
	sections := []string{v.styles.Title.Render("History"), ""}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	default:
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.styles.Help.Render("[j/k] Navigate  [Enter] Open  [r] Reload  [Esc] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-4)
}

// Count returns the number of loaded records.
func (v *View) Count() int {
	return v.list.Count()
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
