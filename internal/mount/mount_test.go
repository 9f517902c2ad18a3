package mount

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"github.com/spiffcs/ghfeed/internal/render"
)

const hostPage = `<html><body>
<div class="news"><p id="existing">existing news</p></div>
<aside class="feed-right-column"><div id="other">other widget</div></aside>
</body></html>`

func parse(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("NewDocumentFromReader() error: %v", err)
	}
	return doc
}

func cards(n int) []render.Card {
	out := make([]render.Card, n)
	for i := range out {
		id := fmt.Sprintf("ghfeed-event-%d", i)
		out[i] = render.Card{
			ID:   id,
			HTML: template.HTML(fmt.Sprintf(`<article class="ghfeed-card" id="%s">card %d</article>`, id, i)),
		}
	}
	return out
}

func TestRenderTwiceLeavesOneContainer(t *testing.T) {
	doc := parse(t, hostPage)
	m := New()

	for i := 0; i < 2; i++ {
		if err := m.Render(doc, cards(3), Affordance{HasMore: true, NextPage: 2}); err != nil {
			t.Fatalf("Render() error: %v", err)
		}
	}

	if n := doc.Find("#ghfeed-received-events").Length(); n != 1 {
		t.Errorf("expected exactly 1 container, got %d", n)
	}
	if n := doc.Find("article.ghfeed-card").Length(); n != 3 {
		t.Errorf("expected 3 cards, got %d", n)
	}
	if m.Rendered() != 3 {
		t.Errorf("expected Rendered 3, got %d", m.Rendered())
	}
}

func TestRenderPlacement(t *testing.T) {
	tests := []struct {
		name      string
		placement prefs.Placement
		parent    string
		first     bool
	}{
		{"sidebar appends", prefs.PlacementSidebar, "aside.feed-right-column", false},
		{"main prepends", prefs.PlacementMain, "div.news", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, hostPage)
			m := New(WithPlacement(tt.placement))
			if err := m.Render(doc, cards(1), Affordance{}); err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			section := doc.Find("#ghfeed-received-events")
			if !section.Parent().Is(tt.parent) {
				t.Errorf("expected section inside %s", tt.parent)
			}
			children := doc.Find(tt.parent).Children()
			isFirst := children.First().Is("#ghfeed-received-events")
			isLast := children.Last().Is("#ghfeed-received-events")
			if tt.first && !isFirst {
				t.Error("expected section to be the first child")
			}
			if !tt.first && !isLast {
				t.Error("expected section to be the last child")
			}
		})
	}
}

func TestRenderMovesSectionOnPlacementChange(t *testing.T) {
	doc := parse(t, hostPage)
	m := New()
	if err := m.Render(doc, cards(1), Affordance{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	m.SetPlacement(prefs.PlacementMain)
	if err := m.Render(doc, cards(1), Affordance{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if doc.Find("aside #ghfeed-received-events").Length() != 0 {
		t.Error("expected section removed from the sidebar")
	}
	if doc.Find("div.news #ghfeed-received-events").Length() != 1 {
		t.Error("expected section in the main region")
	}
}

func TestRenderMissingHost(t *testing.T) {
	doc := parse(t, `<html><body><p>nothing here</p></body></html>`)
	m := New()
	if err := m.Render(doc, cards(1), Affordance{}); !errors.Is(err, ErrNoHost) {
		t.Errorf("expected ErrNoHost, got %v", err)
	}
	if m.HostReady(doc) {
		t.Error("expected HostReady false")
	}
	if !New().HostReady(parse(t, hostPage)) {
		t.Error("expected HostReady true")
	}
}

func TestAffordance(t *testing.T) {
	tests := []struct {
		name    string
		a       Affordance
		present bool
		busy    bool
	}{
		{"absent without more pages", Affordance{HasMore: false}, false, false},
		{"present", Affordance{HasMore: true, NextPage: 3, Window: "page 2 · 40 events"}, true, false},
		{"busy", Affordance{HasMore: true, NextPage: 3, Busy: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, hostPage)
			m := New()
			if err := m.Render(doc, cards(25), tt.a); err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			button := doc.Find("#ghfeed-load-more")
			if (button.Length() == 1) != tt.present {
				t.Fatalf("expected affordance present=%v, got %d buttons", tt.present, button.Length())
			}
			if !tt.present {
				return
			}
			if page, _ := button.Attr("data-next-page"); page != "3" {
				t.Errorf("expected data-next-page 3, got %q", page)
			}
			_, disabled := button.Attr("disabled")
			if disabled != tt.busy {
				t.Errorf("expected disabled=%v", tt.busy)
			}
			if tt.a.Window != "" && !strings.Contains(doc.Find(".ghfeed-window").Text(), "page 2") {
				t.Error("expected pagination window label")
			}
		})
	}
}

func TestAppendOnlyAddsNewCards(t *testing.T) {
	doc := parse(t, hostPage)
	m := New()
	all := cards(5)

	if err := m.Render(doc, all[:3], Affordance{HasMore: true, NextPage: 2}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	added, err := m.Append(doc, all, Affordance{HasMore: false})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if added != 2 {
		t.Errorf("expected 2 cards appended, got %d", added)
	}
	if n := doc.Find("article.ghfeed-card").Length(); n != 5 {
		t.Errorf("expected 5 cards, got %d", n)
	}
	for i := 0; i < 5; i++ {
		if n := doc.Find(fmt.Sprintf("#ghfeed-event-%d", i)).Length(); n != 1 {
			t.Errorf("card %d present %d times", i, n)
		}
	}
	if doc.Find("#ghfeed-load-more").Length() != 0 {
		t.Error("expected affordance removed when there are no more pages")
	}

	// Appending the same cards again adds nothing.
	added, err = m.Append(doc, all, Affordance{})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if added != 0 || doc.Find("article.ghfeed-card").Length() != 5 {
		t.Errorf("expected no duplicates, added %d", added)
	}
}

func TestAppendKeepsSingleAffordance(t *testing.T) {
	doc := parse(t, hostPage)
	m := New()
	all := cards(4)

	if err := m.Render(doc, all[:2], Affordance{HasMore: true, NextPage: 2}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if _, err := m.Append(doc, all, Affordance{HasMore: true, NextPage: 3}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	buttons := doc.Find("#ghfeed-load-more")
	if buttons.Length() != 1 {
		t.Fatalf("expected 1 affordance, got %d", buttons.Length())
	}
	if page, _ := buttons.Attr("data-next-page"); page != "3" {
		t.Errorf("expected next page 3, got %q", page)
	}
	// The affordance follows the last card.
	if !doc.Find("#ghfeed-received-events").Children().Last().Is(".ghfeed-more") {
		t.Error("expected affordance after the cards")
	}
}

func TestAppendWithoutContainerRenders(t *testing.T) {
	doc := parse(t, hostPage)
	m := New()
	added, err := m.Append(doc, cards(2), Affordance{})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if added != 2 || doc.Find("#ghfeed-received-events").Length() != 1 {
		t.Errorf("expected a fresh section with 2 cards, added %d", added)
	}
}

func TestSetBusy(t *testing.T) {
	doc := parse(t, hostPage)
	m := New()
	if err := m.Render(doc, cards(1), Affordance{HasMore: true, NextPage: 2}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	m.SetBusy(doc, true)
	button := doc.Find("#ghfeed-load-more")
	if _, ok := button.Attr("disabled"); !ok {
		t.Error("expected disabled while busy")
	}
	if v, _ := button.Attr("aria-busy"); v != "true" {
		t.Error("expected aria-busy while busy")
	}

	m.SetBusy(doc, false)
	if _, ok := button.Attr("disabled"); ok {
		t.Error("expected enabled after busy")
	}
	if button.Text() != "Load more" {
		t.Errorf("unexpected label %q", button.Text())
	}
}

func TestFragment(t *testing.T) {
	m := New()
	html, err := m.Fragment(cards(2), Affordance{HasMore: true, NextPage: 2})
	if err != nil {
		t.Fatalf("Fragment() error: %v", err)
	}
	doc := parse(t, string(html))
	if doc.Find("section#ghfeed-received-events article").Length() != 2 {
		t.Errorf("unexpected fragment %s", html)
	}

	more, err := m.CardsFragment(cards(1), Affordance{})
	if err != nil {
		t.Fatalf("CardsFragment() error: %v", err)
	}
	if strings.Contains(string(more), "ghfeed-load-more") {
		t.Error("expected no affordance without more pages")
	}
}

func TestKeepScroll(t *testing.T) {
	tests := []struct {
		name      string
		v         Viewport
		newHeight int
		want      int
	}{
		{"at bottom follows", Viewport{Offset: 80, Height: 20, ContentHeight: 100}, 150, 130},
		{"within threshold follows", Viewport{Offset: 78, Height: 20, ContentHeight: 100}, 150, 130},
		{"scrolled up keeps offset", Viewport{Offset: 10, Height: 20, ContentHeight: 100}, 150, 10},
		{"short content stays at top", Viewport{Offset: 0, Height: 20, ContentHeight: 10}, 15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeepScroll(tt.v, tt.newHeight, 3); got != tt.want {
				t.Errorf("KeepScroll() = %d, want %d", got, tt.want)
			}
		})
	}
}
