// Package feed holds the paging state of one received-events feed.
//
// A Machine moves Idle(page 0) → Loading(1) → Ready(1) → Loading(2) → ...
// and stops offering more pages once the API reports no next page, a page
// comes back empty, or a fetch fails.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/filter"
	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/model"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"github.com/spiffcs/ghfeed/internal/render"
)

var (
	// ErrLoading is returned when a page is requested while another load
	// is in flight. State is left untouched.
	ErrLoading = errors.New("a page is already loading")
	// ErrOutOfOrder is returned when a page other than the next one is
	// requested.
	ErrOutOfOrder = errors.New("pages must be loaded in order")
	// ErrNoMore is returned when the feed has no further pages.
	ErrNoMore = errors.New("no more pages")
)

// Fetcher fetches one page of received events.
type Fetcher interface {
	ReceivedEvents(ctx context.Context, username string, page, perPage int) (*model.EventPage, error)
}

// CardRenderer renders events into cards, one per event and in order.
type CardRenderer interface {
	RenderCards(events []*model.Event, p prefs.Preferences) []render.Card
}

// Reporter receives fetch failures.
type Reporter func(page int, err error)

// State is a snapshot of the feed.
type State struct {
	Events  []*model.Event
	Page    int
	HasMore bool
	Loading bool
}

// Batch is the result of one successful page load.
type Batch struct {
	Page     int
	Events   []*model.Event
	Cards    []render.Card
	Fetched  int
	Filtered int
}

// Machine is the feed state machine. It is safe for concurrent use; at
// most one load runs at a time.
type Machine struct {
	fetcher  Fetcher
	renderer CardRenderer
	username string
	perPage  int
	rules    []filter.Rule
	report   Reporter

	mu    sync.Mutex
	prefs prefs.Preferences
	state State
}

// Option configures a Machine.
type Option func(*Machine)

// WithPerPage sets the page size.
func WithPerPage(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// WithRules sets the actor filter rules.
func WithRules(rules []filter.Rule) Option {
	return func(m *Machine) {
		m.rules = rules
	}
}

// WithPreferences sets the initial preferences.
func WithPreferences(p prefs.Preferences) Option {
	return func(m *Machine) {
		m.prefs = p
	}
}

// WithReporter sets the sink for fetch failures. The default logs them.
func WithReporter(r Reporter) Option {
	return func(m *Machine) {
		m.report = r
	}
}

// New creates a Machine in the Idle state.
func New(fetcher Fetcher, renderer CardRenderer, username string, opts ...Option) *Machine {
	m := &Machine{
		fetcher:  fetcher,
		renderer: renderer,
		username: username,
		perPage:  constants.DefaultPerPage,
		rules:    filter.DefaultRules(),
		prefs:    prefs.Defaults(),
		state:    State{HasMore: true},
		report: func(page int, err error) {
			log.Error("failed to load feed page", "page", page, "error", err)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadFirstPage loads page 1.
func (m *Machine) LoadFirstPage(ctx context.Context) (Batch, error) {
	return m.LoadPage(ctx, 1)
}

// LoadMore loads the page after the current one.
func (m *Machine) LoadMore(ctx context.Context) (Batch, error) {
	m.mu.Lock()
	next := m.state.Page + 1
	m.mu.Unlock()
	return m.LoadPage(ctx, next)
}

// LoadPage fetches page n, filters it, appends the survivors and renders
// them. n must be the page after the current one.
//
// The lock is not held during the fetch; the Loading flag keeps a second
// load out until this one is applied. On failure HasMore becomes false
// and Events is left exactly as it was.
func (m *Machine) LoadPage(ctx context.Context, n int) (Batch, error) {
	m.mu.Lock()
	switch {
	case m.state.Loading:
		m.mu.Unlock()
		return Batch{}, ErrLoading
	case n != m.state.Page+1:
		page := m.state.Page
		m.mu.Unlock()
		return Batch{}, fmt.Errorf("%w: requested page %d after page %d", ErrOutOfOrder, n, page)
	case !m.state.HasMore:
		m.mu.Unlock()
		return Batch{}, ErrNoMore
	}
	m.state.Loading = true
	p := m.prefs
	m.mu.Unlock()

	log.Debug("loading feed page", "page", n, "per_page", m.perPage)
	resp, err := m.fetcher.ReceivedEvents(ctx, m.username, n, m.perPage)
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		m.mu.Lock()
		m.state.Loading = false
		m.state.HasMore = false
		m.mu.Unlock()

		m.report(n, err)
		return Batch{}, fmt.Errorf("failed to load page %d: %w", n, err)
	}

	var rules []filter.Rule
	if p.ActorFilter {
		rules = m.rules
	}
	survivors := filter.Apply(resp.Events, rules)

	m.mu.Lock()
	events := make([]*model.Event, 0, len(m.state.Events)+len(survivors))
	events = append(events, m.state.Events...)
	events = append(events, survivors...)
	m.state.Events = events
	m.state.Page = n
	// An entirely filtered page still counts as non-empty.
	m.state.HasMore = resp.HasNext && len(resp.Events) > 0
	m.state.Loading = false
	m.mu.Unlock()

	cards := m.renderer.RenderCards(survivors, p)

	log.Info("loaded feed page", "page", n, "fetched", len(resp.Events), "shown", len(survivors))
	return Batch{
		Page:     n,
		Events:   survivors,
		Cards:    cards,
		Fetched:  len(resp.Events),
		Filtered: len(resp.Events) - len(survivors),
	}, nil
}

// Cards renders every accumulated event with the current preferences.
func (m *Machine) Cards() []render.Card {
	m.mu.Lock()
	events := m.state.Events
	p := m.prefs
	m.mu.Unlock()

	return m.renderer.RenderCards(events, p)
}

// SetPreferences replaces the preferences used by later loads and renders.
func (m *Machine) SetPreferences(p prefs.Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
}

// Preferences returns the current preferences.
func (m *Machine) Preferences() prefs.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

// Snapshot returns a copy of the state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.Events = append([]*model.Event(nil), m.state.Events...)
	return s
}

// HasMore reports whether another page can be loaded.
func (m *Machine) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.HasMore
}

// Loading reports whether a load is in flight.
func (m *Machine) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Loading
}

// Page returns the last applied page, 0 before the first load.
func (m *Machine) Page() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Page
}

// Username returns the user whose feed this is.
func (m *Machine) Username() string {
	return m.username
}
