package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cronograma/internal/model"
)

// TaskAction is an operation a view asks the root model to run on a task.
type TaskAction int

const (
	ActionStart TaskAction = iota
	ActionUnstart
	ActionProgress
	ActionRegress
	ActionNew
	ActionEdit
	ActionDelete
)

// ProgressStep is the percentage added or removed by one progress key press.
const ProgressStep = 10

// TaskActionMsg carries a task operation up to the root model.
type TaskActionMsg struct {
	Action TaskAction
	Task   model.Task
}

// SelectedTaskMsg asks the root model to open the detail view of a task.
type SelectedTaskMsg struct {
	TaskID string
}

// NoticeMsg shows a transient line in the status bar. A non-nil Err is
// rendered instead of Text.
type NoticeMsg struct {
	Text string
	Err  error
}

// Notice returns a command that emits a NoticeMsg.
func Notice(text string, err error) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text, Err: err} }
}
