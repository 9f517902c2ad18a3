package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
)

// Task is one startup step of the progress display.
type Task struct {
	ID       TaskID
	Name     string
	Status   TaskStatus
	Message  string
	Count    int
	Progress float64
	Error    error
}

// NewTask creates a pending task.
func NewTask(id TaskID, name string) Task {
	return Task{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	}
}

// Line renders the task as one line. The bar is drawn only while a
// running task reports partial progress, e.g. pages of a multi-page load.
func (t Task) Line(spinnerFrame string, bar progress.Model) string {
	parts := []string{StatusIcon(t.Status, spinnerFrame), t.title()}

	if t.Status == StatusRunning && t.Progress > 0 && t.Progress < 1 {
		parts = append(parts, bar.ViewAs(t.Progress))
	}
	if d := t.detail(); d != "" {
		parts = append(parts, messageStyle.Render(d))
	}
	if t.Error != nil {
		parts = append(parts, errorStyle.Render(t.Error.Error()))
	}

	return "  " + strings.Join(parts, " ")
}

func (t Task) title() string {
	if t.Status == StatusPending {
		return taskDimStyle.Render(t.Name)
	}
	return taskNameStyle.Render(t.Name)
}

// detail is the task message, else its event count.
func (t Task) detail() string {
	switch {
	case t.Message != "":
		return t.Message
	case t.Count > 0:
		return "(" + pluralize(t.Count, "event", "events") + ")"
	default:
		return ""
	}
}
