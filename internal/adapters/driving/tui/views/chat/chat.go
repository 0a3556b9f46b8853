// Package chat provides the question and answer view for an analysed video.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
)

// reservedLines is the space kept for header, input and status bar.
const reservedLines = 8

// Turn is one question with its answer or failure.
type Turn struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View represents the chat view with transcript, question input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	viewport  viewport.Model
	statusbar *status.Bar

	analysisService driving.AnalysisService
	ctx             context.Context

	sessionID string
	result    *domain.AnalysisResult
	turns     []Turn

	width     int
	height    int
	ready     bool
	answering bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, analysisService driving.AnalysisService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewQuestionField(s),
		viewport:        viewport.New(80, 24-reservedLines),
		statusbar:       status.NewBar(s, km),
		analysisService: analysisService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Focus()
}

// Open switches the view to a session and clears the transcript.
func (v *View) Open(sessionID string, result *domain.AnalysisResult) {
	v.sessionID = sessionID
	v.result = result
	v.turns = nil
	v.answering = false
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetMessage("Session " + sessionID)
	v.refresh()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChatOpened:
		v.Open(msg.SessionID, msg.Result)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.answering {
			return v, nil
		}
		v.input.Reset()
		v.answering = true
		v.turns = append(v.turns, Turn{Question: question})
		v.statusbar.SetState(status.StateAnswering)
		v.refresh()
		return v, v.performAnswer(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// performAnswer asks the service and returns the outcome as a message.
func (v *View) performAnswer(question string) tea.Cmd {
	sessionID := v.sessionID
	return func() tea.Msg {
		if v.analysisService == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoAnalysisService}
		}
		if sessionID == "" {
			return messages.AnswerCompleted{Question: question, Err: ErrNoSession}
		}

		answer, err := v.analysisService.Answer(v.ctx, sessionID, question)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

// handleAnswerCompleted fills in the pending turn.
func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	v.answering = false
	if n := len(v.turns); n > 0 && v.turns[n-1].Answer == nil && v.turns[n-1].Err == nil {
		v.turns[n-1].Answer = msg.Answer
		v.turns[n-1].Err = msg.Err
	} else {
		v.turns = append(v.turns, Turn{Question: msg.Question, Answer: msg.Answer, Err: msg.Err})
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("Session " + v.sessionID)
	}
	v.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

// renderTranscript renders all turns.
func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask anything about the comments on this video.")
	}

	wrap := lipgloss.NewStyle().Width(v.contentWidth())
	var b strings.Builder
	for i, turn := range v.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("> " + turn.Question))
		b.WriteString("\n")

		switch {
		case turn.Err != nil:
			b.WriteString(v.styles.Error.Render("  " + turn.Err.Error()))
			b.WriteString("\n")
		case turn.Answer == nil:
			b.WriteString(v.styles.Muted.Render("  ..."))
			b.WriteString("\n")
		default:
			b.WriteString(v.styles.Answer.Render(wrap.Render(strings.TrimSpace(turn.Answer.Text))))
			b.WriteString("\n")
			for _, src := range turn.Answer.Sources {
				quote := fmt.Sprintf("“%s” (%.2f)", oneLine(src.Comment.Text, v.contentWidth()-16), src.Similarity)
				b.WriteString(v.styles.Quote.Render(quote))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (v *View) contentWidth() int {
	if v.width < 40 {
		return 36
	}
	return v.width - 6
}

// oneLine collapses text to a single line of at most n runes.
func oneLine(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n < 10 {
		n = 10
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Ask questions"
	if v.result != nil && v.result.Video.Title != "" {
		title = v.result.Video.Title
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render(title),
		"",
		v.viewport.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = height - reservedLines
	if v.viewport.Height < 3 {
		v.viewport.Height = 3
	}
	v.refresh()
}

// SessionID returns the current session.
func (v *View) SessionID() string {
	return v.sessionID
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Answering returns whether a question is in flight.
func (v *View) Answering() bool {
	return v.answering
}

// Question returns the current input value.
func (v *View) Question() string {
	return v.input.Value()
}
