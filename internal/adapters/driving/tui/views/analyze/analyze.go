// Package analyze provides the video analysis view for the TUI.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
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

// barWidth is the width of the sentiment bar in cells.
const barWidth = 40

// View represents the analysis view with URL input, result and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	spinner   spinner.Model
	statusbar *status.Bar

	analysisService driving.AnalysisService
	ctx             context.Context

	result    *domain.AnalysisResult
	sessionID string

	width     int
	height    int
	ready     bool
	analysing bool
	err       error
}

// NewView creates a new analyze view.
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
		input:           input.NewURLField(s),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
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
	return v.input.Init()
}

// Update handles messages for the analyze view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnalysisRequested:
		v.input.SetValue(msg.URL)
		return v, v.start(msg.URL)

	case messages.AnalysisCompleted:
		v.handleAnalysisCompleted(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.analysing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Input is locked while an analysis is running
	if v.analysing {
		return v, nil
	}

	if v.input.Focused() {
		if msg.Type == tea.KeyEnter {
			url := strings.TrimSpace(v.input.Value())
			if url == "" {
				return v, nil
			}
			return v, v.start(url)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Chat) && v.result != nil:
		sessionID, result := v.sessionID, v.result
		return v, func() tea.Msg {
			return messages.ChatOpened{SessionID: sessionID, Result: result}
		}
	case keymap.Matches(msg.String(), v.keymap.NewVideo):
		v.Reset()
		return v, v.input.Focus()
	}

	return v, nil
}

// start begins analysing url.
func (v *View) start(url string) tea.Cmd {
	v.analysing = true
	v.err = nil
	v.input.Blur()
	v.statusbar.SetState(status.StateAnalysing)
	v.statusbar.SetMessage("")
	return tea.Batch(v.spinner.Tick, v.performAnalysis(url))
}

// performAnalysis runs the analysis and returns the outcome as a message.
func (v *View) performAnalysis(url string) tea.Cmd {
	return func() tea.Msg {
		if v.analysisService == nil {
			return messages.AnalysisCompleted{Err: ErrNoAnalysisService}
		}

		result, sessionID, err := v.analysisService.Analyze(v.ctx, url)
		return messages.AnalysisCompleted{Result: result, SessionID: sessionID, Err: err}
	}
}

// handleAnalysisCompleted stores a result or surfaces the failure.
func (v *View) handleAnalysisCompleted(msg messages.AnalysisCompleted) {
	v.analysing = false
	if msg.Err != nil {
		v.setError(msg.Err)
		v.input.Focus()
		return
	}

	v.err = nil
	v.result = msg.Result
	v.sessionID = msg.SessionID
	v.statusbar.SetState(status.StateResult)
	v.statusbar.SetMessage("")
	if msg.Result != nil {
		v.statusbar.SetCommentCount(len(msg.Result.Comments))
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the analyze view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Analyse a video"), "", v.input.View(), "")

	if v.analysing {
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("This can take a while for popular videos"), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.result != nil && !v.analysing {
		sections = append(sections, v.renderResult())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderResult renders the video header, sentiment breakdown, summary and top comments.
func (v *View) renderResult() string {
	r := v.result
	wrap := lipgloss.NewStyle().Width(v.contentWidth())

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(r.Video.Title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s · %d views · %d comments analysed",
		r.Video.Channel, r.Video.ViewCount, r.SentimentStats.Total)))
	b.WriteString("\n\n")

	b.WriteString(v.sentimentBar(r.SentimentStats))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Subtitle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(strings.TrimSpace(r.Summary)))
	b.WriteString("\n")

	if len(r.TopComments) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Top comments"))
		b.WriteString("\n")
		for _, c := range r.TopComments {
			label := c.Sentiment.Label()
			marker := v.styles.Sentiment(label).Render(fmt.Sprintf("[%s]", label))
			line := fmt.Sprintf("%s %s %s", marker,
				v.styles.Muted.Render(fmt.Sprintf("%d likes", c.LikeCount)),
				oneLine(c.Text, v.contentWidth()-30))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if v.sessionID != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Session " + v.sessionID))
	}

	return b.String()
}

// sentimentBar renders the positive/neutral/negative split as a coloured bar.
func (v *View) sentimentBar(stats domain.SentimentStats) string {
	pos := int(stats.Positive / 100 * barWidth)
	neg := int(stats.Negative / 100 * barWidth)
	neu := barWidth - pos - neg
	if neu < 0 {
		neu = 0
	}

	bar := v.styles.Success.Render(strings.Repeat("█", pos)) +
		v.styles.Muted.Render(strings.Repeat("█", neu)) +
		v.styles.Error.Render(strings.Repeat("█", neg))

	legend := fmt.Sprintf("%.1f%% positive  %.1f%% neutral  %.1f%% negative",
		stats.Positive, stats.Neutral, stats.Negative)
	return bar + "\n" + v.styles.Muted.Render(legend)
}

func (v *View) contentWidth() int {
	if v.width < 40 {
		return 40
	}
	return v.width - 4
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

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Analysing returns whether an analysis is in flight.
func (v *View) Analysing() bool {
	return v.analysing
}

// Result returns the last successful result.
func (v *View) Result() *domain.AnalysisResult {
	return v.result
}

// SessionID returns the session of the last successful result.
func (v *View) SessionID() string {
	return v.sessionID
}

// URL returns the current input value.
func (v *View) URL() string {
	return v.input.Value()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.input.Focused()
}

// Reset clears the input and result.
func (v *View) Reset() {
	v.input.Focus()
	v.input.SetValue("")
	v.result = nil
	v.sessionID = ""
	v.analysing = false
	v.err = nil
	v.statusbar.Clear()
}
