// Package mount places rendered cards into a host dashboard document.
package mount

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/PuerkitoBio/goquery"
	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"github.com/spiffcs/ghfeed/internal/render"
)

// ErrNoHost is returned when the host region for the placement is missing.
var ErrNoHost = errors.New("host region not found")

// Affordance describes the "load more" control under the cards.
type Affordance struct {
	HasMore  bool
	NextPage int
	Busy     bool
	Window   string
}

var tmpl = template.Must(template.New("mount").Parse(`{{define "section"}}<section id="{{.ID}}" class="ghfeed" aria-label="Received events"><h2 class="ghfeed-title">Received events</h2><div class="ghfeed-cards">{{template "cards" .Cards}}</div>{{template "affordance" .}}</section>{{end}}
{{define "cards"}}{{range .}}{{.HTML}}{{end}}{{end}}
{{define "affordance"}}{{if .A.HasMore}}<div class="ghfeed-more">{{with .A.Window}}<span class="ghfeed-window">{{.}}</span> {{end}}<button type="button" id="{{.LoadMoreID}}" class="ghfeed-load-more" data-next-page="{{.A.NextPage}}"{{if .A.Busy}} aria-busy="true" disabled{{end}}>{{if .A.Busy}}Loading…{{else}}Load more{{end}}</button></div>{{end}}{{end}}`))

type sectionData struct {
	ID         string
	LoadMoreID string
	Cards      []render.Card
	A          Affordance
}

// Mount tracks one mounted feed section and how many cards it holds.
type Mount struct {
	containerID string
	loadMoreID  string
	placement   prefs.Placement
	sidebar     string
	main        string
	rendered    int
}

// Option configures a Mount.
type Option func(*Mount)

// WithContainerID sets the id of the mounted section.
func WithContainerID(id string) Option {
	return func(m *Mount) {
		m.containerID = id
	}
}

// WithPlacement selects the host region.
func WithPlacement(p prefs.Placement) Option {
	return func(m *Mount) {
		if p.Valid() {
			m.placement = p
		}
	}
}

// WithSelectors sets the CSS selectors of the sidebar and main regions.
func WithSelectors(sidebar, main string) Option {
	return func(m *Mount) {
		if sidebar != "" {
			m.sidebar = sidebar
		}
		if main != "" {
			m.main = main
		}
	}
}

// New creates a Mount.
func New(opts ...Option) *Mount {
	m := &Mount{
		containerID: constants.ContainerID,
		loadMoreID:  constants.LoadMoreID,
		placement:   prefs.PlacementSidebar,
		sidebar:     constants.DefaultSidebarSelector,
		main:        constants.DefaultMainSelector,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetPlacement moves later renders to another region.
func (m *Mount) SetPlacement(p prefs.Placement) {
	if p.Valid() {
		m.placement = p
	}
}

// Placement returns the current placement.
func (m *Mount) Placement() prefs.Placement {
	return m.placement
}

// Rendered returns how many cards are materialized in the section.
func (m *Mount) Rendered() int {
	return m.rendered
}

// LoadMoreID returns the id of the load-more button.
func (m *Mount) LoadMoreID() string {
	return m.loadMoreID
}

// HostReady reports whether the region for the current placement exists.
func (m *Mount) HostReady(doc *goquery.Document) bool {
	return doc.Find(m.hostSelector()).Length() > 0
}

func (m *Mount) hostSelector() string {
	if m.placement == prefs.PlacementMain {
		return m.main
	}
	return m.sidebar
}

// Render replaces any existing section with a fresh one holding cards.
// Repeated calls leave exactly one section in the document.
func (m *Mount) Render(doc *goquery.Document, cards []render.Card, a Affordance) error {
	doc.Find("#" + m.containerID).Remove()

	host := doc.Find(m.hostSelector()).First()
	if host.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrNoHost, m.hostSelector())
	}

	section, err := m.execute("section", m.data(cards, a))
	if err != nil {
		return err
	}
	if m.placement == prefs.PlacementMain {
		host.PrependHtml(section)
	} else {
		host.AppendHtml(section)
	}
	m.rendered = len(cards)
	return nil
}

// Append adds the cards beyond those already rendered and refreshes the
// affordance. It renders from scratch when the section is gone or cards
// is shorter than what is on the page. It returns the number of cards
// added.
func (m *Mount) Append(doc *goquery.Document, cards []render.Card, a Affordance) (int, error) {
	container := doc.Find("#" + m.containerID)
	if container.Length() == 0 || len(cards) < m.rendered {
		if err := m.Render(doc, cards, a); err != nil {
			return 0, err
		}
		return len(cards), nil
	}

	fresh := cards[m.rendered:]
	if len(fresh) > 0 {
		html, err := m.execute("cards", fresh)
		if err != nil {
			return 0, err
		}
		container.Find(".ghfeed-cards").AppendHtml(html)
	}

	container.Find(".ghfeed-more").Remove()
	affordance, err := m.execute("affordance", m.data(nil, a))
	if err != nil {
		return 0, err
	}
	if affordance != "" {
		container.AppendHtml(affordance)
	}

	m.rendered = len(cards)
	return len(fresh), nil
}

// SetBusy marks the load-more button as busy and disabled, or restores it.
func (m *Mount) SetBusy(doc *goquery.Document, busy bool) {
	button := doc.Find("#" + m.loadMoreID)
	if busy {
		button.SetAttr("aria-busy", "true")
		button.SetAttr("disabled", "")
		button.SetText("Loading…")
		return
	}
	button.RemoveAttr("aria-busy")
	button.RemoveAttr("disabled")
	button.SetText("Load more")
}

// Fragment renders the section without a host document.
func (m *Mount) Fragment(cards []render.Card, a Affordance) (template.HTML, error) {
	html, err := m.execute("section", m.data(cards, a))
	return template.HTML(html), err
}

// CardsFragment renders only the given cards followed by the affordance,
// for appending to an already mounted section.
func (m *Mount) CardsFragment(cards []render.Card, a Affordance) (template.HTML, error) {
	html, err := m.execute("cards", cards)
	if err != nil {
		return "", err
	}
	affordance, err := m.execute("affordance", m.data(nil, a))
	if err != nil {
		return "", err
	}
	return template.HTML(html + affordance), nil
}

func (m *Mount) data(cards []render.Card, a Affordance) sectionData {
	return sectionData{
		ID:         m.containerID,
		LoadMoreID: m.loadMoreID,
		Cards:      cards,
		A:          a,
	}
}

func (m *Mount) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
