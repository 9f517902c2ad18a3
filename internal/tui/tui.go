package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/ghfeed/internal/commands"
	"golang.org/x/term"
)

// Run starts the startup progress display and blocks until it completes.
func Run(events <-chan Event, opts ...ModelOption) error {
	model := NewModel(events, opts...)
	// Don't use alt screen - render inline
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

// RunFeedUI starts the interactive feed browser.
func RunFeedUI(ctx context.Context, f Feed, registry *commands.Registry) error {
	model := NewFeedModel(ctx, f, registry)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// ciEnv lists variables whose presence marks a CI run.
var ciEnv = []string{"CI", "GITHUB_ACTIONS", "JENKINS_URL", "TRAVIS", "CIRCLECI", "GITLAB_CI", "BUILDKITE"}

// ShouldUseTUI reports whether startup progress can be drawn on stdout.
func ShouldUseTUI() bool {
	return isTerminal(os.Stdout) && !inCI() && os.Getenv("TERM") != "dumb"
}

// CanBrowse reports whether the interactive browser can run: it reads
// keys from stdin and owns the screen on stdout.
func CanBrowse() bool {
	return isTerminal(os.Stdin) && ShouldUseTUI()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func inCI() bool {
	for _, v := range ciEnv {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}
