// Package render turns received events into sanitized HTML cards.
//
// Every card is built from html/template, so dynamic text is escaped at
// the template boundary. Markdown bodies are converted with goldmark and
// sanitized with bluemonday, and the finished card passes through a final
// sanitize policy before it leaves the package.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/model"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrorMarker is shown in place of a card that could not be rendered.
const ErrorMarker = "[Render error]"

// Card is one rendered event.
type Card struct {
	ID       string        `json:"id"`
	EventID  string        `json:"event_id"`
	Kind     model.Kind    `json:"kind"`
	HTML     template.HTML `json:"html"`
	Text     string        `json:"text"`
	BodyText string        `json:"body_text,omitempty"`
	TimeAgo  string        `json:"time_ago,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
}

// ErrorFunc receives render failures.
type ErrorFunc func(e *model.Event, err error)

// Renderer renders cards. It is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	ugc       *bluemonday.Policy
	cardSafe  *bluemonday.Policy
	tmpl      *template.Template
	now       func() time.Time
	onError   ErrorFunc
	kindClass *regexp.Regexp
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used for time-ago labels.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithErrorFunc sets the sink for render failures. The default logs them.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(r *Renderer) {
		r.onError = fn
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
		),
		ugc:       ugcPolicy(),
		cardSafe:  cardPolicy(),
		tmpl:      template.Must(template.New("ghfeed").Parse(allTemplates())),
		now:       time.Now,
		kindClass: regexp.MustCompile(`[^a-z0-9-]+`),
		onError: func(e *model.Event, err error) {
			log.Error("failed to render event", "id", e.ID, "kind", e.Kind, "error", err)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ugcPolicy is the policy for user-written bodies. Raw HTML in markdown
// reaches it untouched, so it alone decides what survives.
func ugcPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("kbd")
	return p
}

// cardPolicy extends the user content policy with the structural markup
// cards use.
func cardPolicy() *bluemonday.Policy {
	p := ugcPolicy()
	p.AllowElements("article", "header", "section", "time", "button", "span", "div", "code")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[A-Za-z0-9_-]+$`)).OnElements("article", "section")
	p.AllowDataAttributes()
	p.AllowAttrs("datetime", "title").OnElements("time")
	p.AllowAttrs("type", "disabled", "aria-label").OnElements("button")
	p.AllowAttrs("aria-label").OnElements("div", "span")
	return p
}

// RenderMarkdown converts markdown to sanitized HTML.
func (r *Renderer) RenderMarkdown(text string) template.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return r.Sanitize("<p>" + html.EscapeString(text) + "</p>")
	}
	return r.Sanitize(buf.String())
}

// Sanitize cleans untrusted HTML with the user content policy.
func (r *Renderer) Sanitize(s string) template.HTML {
	return template.HTML(r.ugc.Sanitize(s))
}

// RenderCard renders e. It never fails: any error or panic while
// rendering produces a fallback card and is reported to the error sink.
func (r *Renderer) RenderCard(e *model.Event, p prefs.Preferences) (c Card) {
	if e == nil {
		e = &model.Event{}
	}
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic rendering %s: %v", e.Kind, rec)
			r.onError(e, err)
			c = r.fallbackCard(e)
		}
	}()

	c, err := r.renderCard(e, p)
	if err != nil {
		r.onError(e, err)
		return r.fallbackCard(e)
	}
	return c
}

// RenderCards renders every event in order.
func (r *Renderer) RenderCards(events []*model.Event, p prefs.Preferences) []Card {
	cards := make([]Card, 0, len(events))
	for _, e := range events {
		cards = append(cards, r.RenderCard(e, p))
	}
	return cards
}

func (r *Renderer) renderCard(e *model.Event, p prefs.Preferences) (Card, error) {
	if e.PayloadErr != nil {
		return Card{}, e.PayloadErr
	}
	if e.Payload == nil {
		return Card{}, errors.New("event has no payload")
	}

	d := r.baseData(e)
	if err := r.fill(&d, e, p); err != nil {
		return Card{}, err
	}
	return r.finish(e, d)
}

// fill dispatches on the payload variant. Every variant in model has a
// case here; a variant without one is reported as an error.
func (r *Renderer) fill(d *cardData, e *model.Event, p prefs.Preferences) error {
	switch pl := e.Payload.(type) {
	case *model.WatchPayload:
		r.watch(d, pl)
	case *model.ForkPayload:
		r.fork(d, pl)
	case *model.PushPayload:
		r.push(d, e, pl, p)
	case *model.CreatePayload:
		r.ref(d, "created", pl.RefType, pl.Ref)
	case *model.DeletePayload:
		r.ref(d, "deleted", pl.RefType, pl.Ref)
	case *model.PublicPayload:
		d.Template = "kind-public"
	case *model.IssueCommentPayload:
		r.issueComment(d, pl, p)
	case *model.IssuesPayload:
		r.issues(d, pl, p)
	case *model.PullRequestPayload:
		r.pullRequest(d, pl, p)
	case *model.PullRequestReviewPayload:
		r.review(d, pl, p)
	case *model.PullRequestReviewCommentPayload:
		r.reviewComment(d, pl, p)
	case *model.CommitCommentPayload:
		r.commitComment(d, e, pl, p)
	case *model.MemberPayload:
		r.member(d, pl)
	case *model.GollumPayload:
		r.gollum(d, pl, p)
	case *model.ReleasePayload:
		r.release(d, pl, p)
	case *model.SponsorshipPayload:
		d.Template = "kind-sponsorship"
	case *model.UnknownPayload:
		d.Template = "kind-unknown"
		d.Class = "unknown"
		d.Text = string(e.Kind)
	default:
		return fmt.Errorf("no card layout for payload %T", pl)
	}
	return nil
}

func (r *Renderer) finish(e *model.Event, d cardData) (Card, error) {
	var sentence bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&sentence, d.Template, d); err != nil {
		return Card{}, fmt.Errorf("failed to render %s: %w", d.Template, err)
	}
	d.Sentence = template.HTML(sentence.String())

	var out bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&out, "card", d); err != nil {
		return Card{}, fmt.Errorf("failed to render card: %w", err)
	}

	return Card{
		ID:       d.ID,
		EventID:  e.ID,
		Kind:     e.Kind,
		HTML:     template.HTML(r.cardSafe.Sanitize(out.String())),
		Text:     plainText(string(d.Sentence)),
		BodyText: plainText(string(d.Items) + " " + string(d.Body)),
		TimeAgo:  d.TimeAgo,
	}, nil
}

func (r *Renderer) fallbackCard(e *model.Event) Card {
	d := r.baseData(e)
	d.Template = "kind-fallback"
	d.Class = "fallback"
	c, err := r.finish(e, d)
	if err != nil {
		// The fallback layout only touches envelope fields.
		text := html.EscapeString(e.Actor.Name() + " " + e.RepoName() + " " + ErrorMarker)
		c = Card{
			ID:      d.ID,
			EventID: e.ID,
			Kind:    e.Kind,
			HTML:    template.HTML(`<article class="ghfeed-card ghfeed-fallback">` + text + `</article>`),
			Text:    text,
		}
	}
	c.Fallback = true
	return c
}

// plainText extracts the visible text of an HTML fragment.
func plainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
