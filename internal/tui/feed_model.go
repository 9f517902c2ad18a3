package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/ghfeed/internal/commands"
	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/feed"
	"github.com/spiffcs/ghfeed/internal/mount"
	"github.com/spiffcs/ghfeed/internal/render"
)

// Feed is the part of the feed machine the browser drives.
type Feed interface {
	LoadMore(ctx context.Context) (feed.Batch, error)
	Cards() []render.Card
	Snapshot() feed.State
	Username() string
}

// FeedModel is the Bubble Tea model for the interactive feed browser.
type FeedModel struct {
	ctx      context.Context
	feed     Feed
	registry *commands.Registry

	viewport viewport.Model
	cards    []render.Card
	lines    int
	loading  bool
	ready    bool

	windowWidth  int
	windowHeight int
	statusMsg    string
	quitting     bool
}

// loadedMsg carries the result of a load-more.
type loadedMsg struct {
	batch feed.Batch
	err   error
}

// commandMsg carries the result of a menu command.
type commandMsg struct {
	label string
	err   error
}

// NewFeedModel creates a browser over f. registry may be nil.
func NewFeedModel(ctx context.Context, f Feed, registry *commands.Registry) FeedModel {
	m := FeedModel{
		ctx:          ctx,
		feed:         f,
		registry:     registry,
		windowWidth:  80,
		windowHeight: 24,
		cards:        f.Cards(),
	}
	m.viewport = viewport.New(m.windowWidth, m.viewHeight())
	m.refresh(false)
	return m
}

func (m FeedModel) viewHeight() int {
	h := m.windowHeight - constants.HeaderLines - constants.FooterLines
	if h < 1 {
		return 1
	}
	return h
}

// refresh re-renders the content. When keep is set, a view near the
// bottom follows new content and any other view keeps its offset.
func (m *FeedModel) refresh(keep bool) {
	content := renderCards(m.cards, m.windowWidth)
	lines := lineCount(content)

	offset := m.viewport.YOffset
	if keep {
		offset = mount.KeepScroll(mount.Viewport{
			Offset:        m.viewport.YOffset,
			Height:        m.viewport.Height,
			ContentHeight: m.lines,
		}, lines, constants.StickToBottomThreshold)
	}

	m.viewport.SetContent(content)
	m.viewport.SetYOffset(offset)
	m.lines = lines
}

// Init implements tea.Model
func (m FeedModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = m.viewHeight()
		m.ready = true
		m.refresh(false)
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusMsg = "Failed to load more events"
			return m, clearStatusAfter(3 * time.Second)
		}
		m.cards = append(append([]render.Card(nil), m.cards...), msg.batch.Cards...)
		m.refresh(true)
		if msg.batch.Filtered > 0 {
			m.statusMsg = pluralize(msg.batch.Filtered, "event hidden", "events hidden")
			return m, clearStatusAfter(2 * time.Second)
		}
		return m, nil

	case commandMsg:
		if msg.err != nil {
			m.statusMsg = "Error: " + msg.err.Error()
		} else {
			m.statusMsg = "Ran: " + msg.label
		}
		// Preferences may have changed how cards render.
		m.cards = m.feed.Cards()
		m.refresh(false)
		return m, clearStatusAfter(2 * time.Second)

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input
func (m FeedModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "m":
		return m.loadMore()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m.runCommand(int(msg.Runes[0] - '0'))

	case "g", "home":
		m.viewport.GotoTop()
		return m, nil

	case "G", "end":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// loadMore starts the next page load. It does nothing while a load is in
// flight or when the feed has ended.
func (m FeedModel) loadMore() (tea.Model, tea.Cmd) {
	if m.loading || !m.feed.Snapshot().HasMore {
		return m, nil
	}
	m.loading = true
	ctx, f := m.ctx, m.feed
	return m, func() tea.Msg {
		batch, err := f.LoadMore(ctx)
		return loadedMsg{batch: batch, err: err}
	}
}

// runCommand invokes the menu command at 1-based position n.
func (m FeedModel) runCommand(n int) (tea.Model, tea.Cmd) {
	if m.registry == nil {
		return m, nil
	}
	cmds := m.registry.Commands()
	if n < 1 || n > len(cmds) {
		return m, nil
	}
	ctx, reg, label := m.ctx, m.registry, cmds[n-1].Label
	return m, func() tea.Msg {
		return commandMsg{label: label, err: reg.Invoke(ctx, cmds[n-1].Handle)}
	}
}

// View implements tea.Model
func (m FeedModel) View() string {
	if m.quitting {
		return ""
	}
	return renderFeedView(m)
}

// clearStatusMsg is a message to clear the status
type clearStatusMsg struct{}

// clearStatusAfter returns a command that clears the status after a delay
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
