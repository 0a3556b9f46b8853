// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAnalyze is the URL entry and analysis result view.
	ViewAnalyze
	// ViewChat is the question and answer view for a session.
	ViewChat
	// ViewHistory lists past analyses.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAnalyze:
		return "analyze"
	case ViewChat:
		return "chat"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnalysisRequested asks the analyze view to start on a URL.
type AnalysisRequested struct {
	URL string
}

// AnalysisCompleted carries an analysis result back to the model.
type AnalysisCompleted struct {
	Result    *domain.AnalysisResult
	SessionID string
	Err       error
}

// ChatOpened switches the chat view to a session.
type ChatOpened struct {
	SessionID string
	Result    *domain.AnalysisResult
}

// AnswerCompleted carries an answer back to the chat view.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// HistoryLoaded carries past analyses from the service.
type HistoryLoaded struct {
	Records []domain.AnalysisRecord
	Err     error
}

// RecordSelected signals a history record was chosen.
type RecordSelected struct {
	Record domain.AnalysisRecord
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
