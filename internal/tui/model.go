package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubble Tea model for the startup progress display: the
// credential check, the dashboard readiness wait and the page loads.
type Model struct {
	tasks    []Task
	spinner  spinner.Model
	progress progress.Model
	events   <-chan Event
	done     bool
	username string

	// Readiness wait budget, counted down while TaskReady runs.
	readyTimeout time.Duration
	readySince   time.Time
	now          func() time.Time

	rateLimited    bool
	rateLimitReset time.Time
}

// doneMsg signals that the event channel was closed.
type doneMsg struct{}

// ModelOption is a functional option for configuring a Model.
type ModelOption func(*Model)

// WithTasks sets the tasks to display in the TUI.
func WithTasks(tasks []Task) ModelOption {
	return func(m *Model) {
		m.tasks = tasks
	}
}

// WithReadinessTimeout shows how long the dashboard wait has left.
func WithReadinessTimeout(d time.Duration) ModelOption {
	return func(m *Model) {
		m.readyTimeout = d
	}
}

// WithNow sets the clock used for countdowns.
func WithNow(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// DefaultTasks returns the startup task list.
func DefaultTasks() []Task {
	return []Task{
		NewTask(TaskAuth, "Authenticating"),
		NewTask(TaskReady, "Waiting for dashboard"),
		NewTask(TaskFetch, "Fetching events"),
	}
}

// NewModel creates a new TUI model.
func NewModel(events <-chan Event, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	m := Model{
		tasks:   DefaultTasks(),
		spinner: s,
		progress: progress.New(
			progress.WithScaledGradient("#a5d6ff", "#0969da"),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
		events: events,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if k := msg.String(); k == "ctrl+c" || k == "q" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case TaskEvent:
		cmd := m.apply(msg)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent, doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// apply folds e into its task.
func (m *Model) apply(e TaskEvent) tea.Cmd {
	i := m.taskIndex(e.Task)
	if i < 0 {
		return nil
	}
	t := &m.tasks[i]

	if e.Task == TaskReady && e.Status == StatusRunning && t.Status != StatusRunning {
		m.readySince = m.now()
	}
	if e.Task == TaskAuth && e.Status == StatusComplete && e.Message != "" {
		m.username = e.Message
	}

	t.Status = e.Status
	if e.Message != "" {
		t.Message = e.Message
	}
	if e.Count > 0 {
		t.Count = e.Count
	}
	if e.Error != nil {
		t.Error = e.Error
	}
	if e.Progress > 0 {
		t.Progress = e.Progress
		return m.progress.SetPercent(e.Progress)
	}
	return nil
}

func (m Model) taskIndex(id TaskID) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	for _, t := range m.tasks {
		switch t.ID {
		case TaskAuth:
			b.WriteString(m.authLine(t))
		case TaskReady:
			b.WriteString(t.Line(m.spinner.View(), m.progress) + m.readyCountdown(t))
		default:
			b.WriteString(t.Line(m.spinner.View(), m.progress))
		}
		b.WriteString("\n")
	}

	if m.rateLimited {
		if left := m.rateLimitReset.Sub(m.now()).Round(time.Second); left > 0 {
			b.WriteString(warnStyle.Render(fmt.Sprintf("\n  Rate limited (resets in %s)\n", left)))
		}
	}

	if !m.done {
		b.WriteString(footerStyle.Render("\n  Press Ctrl+C to cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// authLine names the user once the credential is accepted.
func (m Model) authLine(t Task) string {
	switch t.Status {
	case StatusComplete:
		if m.username != "" {
			return fmt.Sprintf("  %s Authenticated as %s", iconComplete, userStyle.Render(m.username))
		}
	case StatusError:
		return fmt.Sprintf("  %s Authentication failed %s", iconError, errorStyle.Render(t.Error.Error()))
	}
	return t.Line(m.spinner.View(), m.progress)
}

// readyCountdown is the time left before the dashboard wait gives up.
func (m Model) readyCountdown(t Task) string {
	if t.Status != StatusRunning || m.readyTimeout <= 0 || m.readySince.IsZero() {
		return ""
	}
	left := m.readyTimeout - m.now().Sub(m.readySince)
	if left < 0 {
		left = 0
	}
	return " " + messageStyle.Render(fmt.Sprintf("(gives up in %s)", left.Round(time.Second)))
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}
