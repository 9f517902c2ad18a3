package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spiffcs/ghfeed/internal/model"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"github.com/spiffcs/ghfeed/internal/render"
)

// fakeFetcher serves canned pages keyed by page number.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int]*model.EventPage
	errs  map[int]error
	calls []int
	// block, when set, is waited on before returning.
	block chan struct{}
}

func (f *fakeFetcher) ReceivedEvents(ctx context.Context, username string, page, perPage int) (*model.EventPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &model.EventPage{Page: page}, nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderCards(events []*model.Event, p prefs.Preferences) []render.Card {
	cards := make([]render.Card, 0, len(events))
	for _, e := range events {
		cards = append(cards, render.Card{ID: "card-" + e.ID, EventID: e.ID, Kind: e.Kind})
	}
	return cards
}

func events(prefix string, n int, login string) []*model.Event {
	out := make([]*model.Event, n)
	for i := range out {
		out[i] = &model.Event{
			ID:    fmt.Sprintf("%s%d", prefix, i),
			Kind:  model.KindWatch,
			Actor: &model.Actor{Login: login},
		}
	}
	return out
}

func newMachine(f *fakeFetcher, opts ...Option) (*Machine, *[]error) {
	var reported []error
	opts = append([]Option{WithReporter(func(_ int, err error) { reported = append(reported, err) })}, opts...)
	return New(f, fakeRenderer{}, "octocat", opts...), &reported
}

func TestInitialState(t *testing.T) {
	m, _ := newMachine(&fakeFetcher{})
	s := m.Snapshot()
	if s.Page != 0 || s.Loading || !s.HasMore || len(s.Events) != 0 {
		t.Errorf("unexpected idle state %+v", s)
	}
}

func TestLoadPagesInOrder(t *testing.T) {
	f := &fakeFetcher{pages: map[int]*model.EventPage{
		1: {Events: events("a", 3, "alice"), HasNext: true},
		2: {Events: events("b", 2, "bob"), HasNext: true},
	}}
	m, _ := newMachine(f)
	ctx := context.Background()

	b1, err := m.LoadFirstPage(ctx)
	if err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	if b1.Page != 1 || len(b1.Cards) != 3 {
		t.Errorf("unexpected first batch %+v", b1)
	}

	b2, err := m.LoadMore(ctx)
	if err != nil {
		t.Fatalf("LoadMore() error: %v", err)
	}
	if b2.Page != 2 || len(b2.Cards) != 2 {
		t.Errorf("unexpected second batch %+v", b2)
	}

	s := m.Snapshot()
	if s.Page != 2 || !s.HasMore {
		t.Errorf("unexpected state %+v", s)
	}
	wantIDs := []string{"a0", "a1", "a2", "b0", "b1"}
	if len(s.Events) != len(wantIDs) {
		t.Fatalf("expected %d events, got %d", len(wantIDs), len(s.Events))
	}
	for i, e := range s.Events {
		if e.ID != wantIDs[i] {
			t.Errorf("event %d: expected %q, got %q", i, wantIDs[i], e.ID)
		}
	}
	if len(m.Cards()) != 5 {
		t.Errorf("expected 5 cards, got %d", len(m.Cards()))
	}
}

func TestLoadPageOutOfOrder(t *testing.T) {
	f := &fakeFetcher{}
	m, _ := newMachine(f)

	for _, n := range []int{0, 2, 5} {
		if _, err := m.LoadPage(context.Background(), n); !errors.Is(err, ErrOutOfOrder) {
			t.Errorf("LoadPage(%d): expected ErrOutOfOrder, got %v", n, err)
		}
	}
	if len(f.calls) != 0 {
		t.Errorf("expected no fetches, got %v", f.calls)
	}
}

func TestLastPageWithoutNextLink(t *testing.T) {
	f := &fakeFetcher{pages: map[int]*model.EventPage{
		1: {Events: events("a", 25, "alice"), HasNext: false},
	}}
	m, _ := newMachine(f)

	if _, err := m.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	if m.HasMore() {
		t.Error("expected HasMore false without rel=next")
	}
	if _, err := m.LoadMore(context.Background()); !errors.Is(err, ErrNoMore) {
		t.Errorf("expected ErrNoMore, got %v", err)
	}
}

func TestEmptyPageEndsFeed(t *testing.T) {
	f := &fakeFetcher{pages: map[int]*model.EventPage{
		1: {Events: nil, HasNext: true},
	}}
	m, _ := newMachine(f)

	if _, err := m.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	if m.HasMore() {
		t.Error("expected HasMore false for an empty page")
	}
}

func TestFullyFilteredPageKeepsHasMore(t *testing.T) {
	f := &fakeFetcher{pages: map[int]*model.EventPage{
		1: {Events: events("bot", 30, "dependabot[bot]"), HasNext: true},
	}}
	m, _ := newMachine(f)

	b, err := m.LoadFirstPage(context.Background())
	if err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	if len(b.Events) != 0 || b.Filtered != 30 || b.Fetched != 30 {
		t.Errorf("unexpected batch %+v", b)
	}
	if !m.HasMore() {
		t.Error("expected HasMore to reflect the unfiltered page")
	}
}

func TestActorFilterToggle(t *testing.T) {
	page := &model.EventPage{Events: append(events("bot", 2, "dependabot[bot]"), events("h", 1, "alice")...), HasNext: true}

	tests := []struct {
		name   string
		filter bool
		want   int
	}{
		{"filter on", true, 1},
		{"filter off", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{pages: map[int]*model.EventPage{1: page}}
			p := prefs.Defaults()
			p.ActorFilter = tt.filter
			m, _ := newMachine(f, WithPreferences(p))

			b, err := m.LoadFirstPage(context.Background())
			if err != nil {
				t.Fatalf("LoadFirstPage() error: %v", err)
			}
			if len(b.Events) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(b.Events))
			}
		})
	}
}

func TestFailureLeavesEventsUntouched(t *testing.T) {
	boom := errors.New("network down")
	f := &fakeFetcher{
		pages: map[int]*model.EventPage{1: {Events: events("a", 2, "alice"), HasNext: true}},
		errs:  map[int]error{2: boom},
	}
	m, reported := newMachine(f)
	ctx := context.Background()

	if _, err := m.LoadFirstPage(ctx); err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	before := m.Snapshot()

	_, err := m.LoadMore(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}

	after := m.Snapshot()
	if len(after.Events) != len(before.Events) {
		t.Fatalf("events changed on failure: %d -> %d", len(before.Events), len(after.Events))
	}
	for i := range before.Events {
		if before.Events[i] != after.Events[i] {
			t.Errorf("event %d changed on failure", i)
		}
	}
	if after.Page != 1 {
		t.Errorf("expected page to stay 1, got %d", after.Page)
	}
	if after.HasMore || after.Loading {
		t.Errorf("expected HasMore and Loading false after failure, got %+v", after)
	}
	if len(*reported) != 1 || !errors.Is((*reported)[0], boom) {
		t.Errorf("expected failure to be reported once, got %v", *reported)
	}

	// No automatic retry.
	if _, err := m.LoadMore(ctx); !errors.Is(err, ErrNoMore) {
		t.Errorf("expected ErrNoMore after failure, got %v", err)
	}
}

func TestFirstPageFailure(t *testing.T) {
	f := &fakeFetcher{errs: map[int]error{1: errors.New("401")}}
	m, reported := newMachine(f)

	if _, err := m.LoadFirstPage(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	s := m.Snapshot()
	if s.Page != 0 || s.HasMore || len(s.Events) != 0 {
		t.Errorf("unexpected state %+v", s)
	}
	if len(*reported) != 1 {
		t.Errorf("expected 1 report, got %d", len(*reported))
	}
}

func TestReentrantLoadIsRejected(t *testing.T) {
	block := make(chan struct{})
	f := &fakeFetcher{
		pages: map[int]*model.EventPage{1: {Events: events("a", 1, "alice"), HasNext: true}},
		block: block,
	}
	m, _ := newMachine(f)

	done := make(chan error, 1)
	go func() {
		_, err := m.LoadFirstPage(context.Background())
		done <- err
	}()

	// Wait until the first load has reached the fetcher.
	for {
		f.mu.Lock()
		n := len(f.calls)
		f.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if !m.Loading() {
		t.Error("expected Loading during fetch")
	}
	if _, err := m.LoadPage(context.Background(), 1); !errors.Is(err, ErrLoading) {
		t.Errorf("expected ErrLoading, got %v", err)
	}
	if _, err := m.LoadMore(context.Background()); !errors.Is(err, ErrLoading) {
		t.Errorf("expected ErrLoading, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}

	f.mu.Lock()
	calls := len(f.calls)
	f.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", calls)
	}
	if m.Loading() {
		t.Error("expected Loading false after the fetch")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	f := &fakeFetcher{pages: map[int]*model.EventPage{1: {Events: events("a", 2, "alice"), HasNext: true}}}
	m, _ := newMachine(f)
	if _, err := m.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}

	s := m.Snapshot()
	s.Events[0] = nil
	if m.Snapshot().Events[0] == nil {
		t.Error("expected Snapshot to return a copy")
	}
}

func TestSetPreferences(t *testing.T) {
	m, _ := newMachine(&fakeFetcher{})
	p := prefs.Preferences{RenderBody: false, ActorFilter: false, Placement: prefs.PlacementMain}
	m.SetPreferences(p)
	if m.Preferences() != p {
		t.Errorf("expected %+v, got %+v", p, m.Preferences())
	}
}

type prefsRenderer struct {
	seen []prefs.Preferences
}

func (r *prefsRenderer) RenderCards(events []*model.Event, p prefs.Preferences) []render.Card {
	r.seen = append(r.seen, p)
	return fakeRenderer{}.RenderCards(events, p)
}

func TestCardsUseCurrentPreferences(t *testing.T) {
	r := &prefsRenderer{}
	m := New(&fakeFetcher{pages: map[int]*model.EventPage{
		1: {Events: events("a", 2, "alice"), HasNext: true},
	}}, r, "octocat")

	if _, err := m.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	p := prefs.Defaults()
	p.RenderBody = false
	m.SetPreferences(p)

	cards := m.Cards()
	if len(cards) != 2 || cards[0].EventID != "a0" || cards[1].EventID != "a1" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
	if len(r.seen) != 2 || r.seen[1].RenderBody {
		t.Errorf("expected the re-render to use the new preferences, saw %+v", r.seen)
	}
}

func TestPerPageIsPassed(t *testing.T) {
	var got int
	m := New(fetchFunc(func(_ context.Context, _ string, _, perPage int) (*model.EventPage, error) {
		got = perPage
		return &model.EventPage{}, nil
	}), fakeRenderer{}, "octocat", WithPerPage(50))

	if _, err := m.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("LoadFirstPage() error: %v", err)
	}
	if got != 50 {
		t.Errorf("expected per page 50, got %d", got)
	}
}

type fetchFunc func(ctx context.Context, username string, page, perPage int) (*model.EventPage, error)

func (f fetchFunc) ReceivedEvents(ctx context.Context, username string, page, perPage int) (*model.EventPage, error) {
	return f(ctx, username, page, perPage)
}
