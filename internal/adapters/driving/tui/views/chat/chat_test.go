package chat

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/threadsense/internal/core/domain"
)

type mockAnalysisService struct {
	answer   *domain.Answer
	err      error
	asked    []string
	sessions []string
}

func (m *mockAnalysisService) Analyze(_ context.Context, _ string) (*domain.AnalysisResult, string, error) {
	return nil, "", nil
}

func (m *mockAnalysisService) Answer(_ context.Context, sessionID, question string) (*domain.Answer, error) {
	m.sessions = append(m.sessions, sessionID)
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

func (m *mockAnalysisService) Session(_ context.Context, _ string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func ask(t *testing.T, v *View, question string) {
	t.Helper()
	typeText(v, question)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func openView(svc *mockAnalysisService) *View {
	v := NewView(nil, nil, svc).WithContext(context.Background())
	v.SetDimensions(100, 40)
	v.Update(messages.ChatOpened{
		SessionID: "sess-1",
		Result:    &domain.AnalysisResult{Video: domain.VideoInfo{Title: "Cats 101"}},
	})
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Equal(t, "Initialising...", v.View())
	assert.Empty(t, v.SessionID())
}

func TestView_Open(t *testing.T) {
	v := openView(&mockAnalysisService{})

	assert.Equal(t, "sess-1", v.SessionID())
	assert.Empty(t, v.Turns())
	out := v.View()
	assert.Contains(t, out, "Cats 101")
	assert.Contains(t, out, "Ask anything")
}

func TestView_AskQuestion(t *testing.T) {
	svc := &mockAnalysisService{answer: &domain.Answer{
		Text: "They love the cats.",
		Sources: []domain.RetrievedComment{
			{Comment: domain.Comment{Text: "cats are the best"}, Similarity: 0.91},
		},
	}}
	v := openView(svc)

	ask(t, v, "what do people like?")

	assert.Equal(t, []string{"what do people like?"}, svc.asked)
	assert.Equal(t, []string{"sess-1"}, svc.sessions)
	require.Len(t, v.Turns(), 1)
	assert.Equal(t, "They love the cats.", v.Turns()[0].Answer.Text)
	assert.False(t, v.Answering())
	assert.Empty(t, v.Question())

	out := v.View()
	assert.Contains(t, out, "> what do people like?")
	assert.Contains(t, out, "They love the cats.")
	assert.Contains(t, out, "cats are the best")
	assert.Contains(t, out, "0.91")
}

func TestView_AskPendingShowsPlaceholder(t *testing.T) {
	v := openView(&mockAnalysisService{answer: &domain.Answer{Text: "ok"}})

	typeText(v, "q1")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.True(t, v.Answering())
	require.Len(t, v.Turns(), 1)
	assert.Nil(t, v.Turns()[0].Answer)

	// A second submit while waiting is ignored.
	typeText(v, "q2")
	_, second := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
}

func TestView_AskError(t *testing.T) {
	v := openView(&mockAnalysisService{err: domain.ErrSessionNotFound})

	ask(t, v, "anything?")

	require.Len(t, v.Turns(), 1)
	assert.ErrorIs(t, v.Turns()[0].Err, domain.ErrSessionNotFound)
	assert.Contains(t, v.View(), "session not found")
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	v := openView(&mockAnalysisService{})

	typeText(v, "   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, v.Turns())
}

func TestView_NoSession(t *testing.T) {
	v := NewView(nil, nil, &mockAnalysisService{})

	msg := v.performAnswer("q")()

	done, ok := msg.(messages.AnswerCompleted)
	require.True(t, ok)
	assert.ErrorIs(t, done.Err, ErrNoSession)
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.Open("sess-1", nil)

	done, ok := v.performAnswer("q")().(messages.AnswerCompleted)

	require.True(t, ok)
	assert.ErrorIs(t, done.Err, ErrNoAnalysisService)
}

func TestView_ReopenClearsTranscript(t *testing.T) {
	v := openView(&mockAnalysisService{answer: &domain.Answer{Text: "ok"}})
	ask(t, v, "q")
	require.Len(t, v.Turns(), 1)

	v.Open("sess-2", nil)

	assert.Equal(t, "sess-2", v.SessionID())
	assert.Empty(t, v.Turns())
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := openView(&mockAnalysisService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
