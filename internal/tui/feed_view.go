package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spiffcs/ghfeed/internal/format"
	"github.com/spiffcs/ghfeed/internal/model"
	"github.com/spiffcs/ghfeed/internal/render"
)

// Column widths
const (
	colAge  = 16
	colKind = 14
	// bodyLines caps the body lines shown under a card.
	bodyLines = 4
)

// renderFeedView renders the complete browser
func renderFeedView(m FeedModel) string {
	var b strings.Builder

	st := m.feed.Snapshot()
	title := fmt.Sprintf("Received events for %s", m.feed.Username())
	b.WriteString(feedTitleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(feedAgeStyle.Render(format.PageWindow(st.Page, len(m.cards))))
	b.WriteString("\n\n")

	if len(m.cards) == 0 {
		b.WriteString(feedEmptyStyle.Render("No events yet."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(renderAffordance(st.HasMore, m.loading))
	b.WriteString("\n")
	b.WriteString(renderMenu(m))
	b.WriteString("\n")
	b.WriteString(renderHelp())

	if m.statusMsg != "" {
		b.WriteString("  ")
		b.WriteString(feedStatusStyle.Render(m.statusMsg))
	}

	return b.String()
}

// renderAffordance renders the load-more line.
func renderAffordance(hasMore, loading bool) string {
	switch {
	case loading:
		return feedStatusStyle.Render("Loading…")
	case hasMore:
		return feedHelpStyle.Render("m: load more")
	default:
		return feedEmptyStyle.Render("End of feed")
	}
}

// renderMenu lists the registered commands with their key.
func renderMenu(m FeedModel) string {
	if m.registry == nil {
		return ""
	}
	var parts []string
	for i, c := range m.registry.Commands() {
		if i >= 9 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %s", feedCommandStyle.Render(fmt.Sprintf("%d:", i+1)), c.Label))
	}
	return strings.Join(parts, "  ")
}

func renderHelp() string {
	return feedHelpStyle.Render("j/k: scroll  g/G: top/bottom  q: quit")
}

// renderCards renders every card as terminal lines.
func renderCards(cards []render.Card, width int) string {
	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderCard(c, width))
	}
	return b.String()
}

// renderCard renders one card: a summary line and, when the card carries
// one, an indented excerpt of its body.
func renderCard(c render.Card, width int) string {
	textWidth := width - colAge - colKind - 4
	if textWidth < 10 {
		textWidth = 10
	}

	age := feedAgeStyle.Render(format.PadRight(format.Truncate(c.TimeAgo, colAge), colAge))
	kind := kindStyle(c).Render(format.PadRight(format.Truncate(shortKind(c.Kind), colKind), colKind))
	line := fmt.Sprintf("%s  %s  %s", age, kind, format.Truncate(c.Text, textWidth))

	if c.BodyText == "" {
		return line
	}

	indent := strings.Repeat(" ", colAge+colKind+4)
	var b strings.Builder
	b.WriteString(line)
	for i, l := range strings.Split(strings.TrimSpace(c.BodyText), "\n") {
		if i >= bodyLines {
			b.WriteString("\n" + indent + feedBodyStyle.Render("…"))
			break
		}
		b.WriteString("\n" + indent + feedBodyStyle.Render(format.Truncate(strings.TrimSpace(l), textWidth)))
	}
	return b.String()
}

func kindStyle(c render.Card) lipgloss.Style {
	if c.Fallback {
		return feedErrorStyle
	}
	switch c.Kind {
	case model.KindPush, model.KindCreate, model.KindDelete:
		return kindPushStyle
	case model.KindPullRequest, model.KindPullRequestReview, model.KindPullRequestReviewComment:
		return kindPRStyle
	case model.KindIssues, model.KindIssueComment:
		return kindIssueStyle
	case model.KindRelease:
		return kindReleaseStyle
	default:
		return kindDefaultStyle
	}
}

func shortKind(k model.Kind) string {
	return strings.TrimSuffix(string(k), "Event")
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func pluralize(n int, singular, plural string) string {
	return fmt.Sprintf("%d %s", n, format.Plural(n, singular, plural))
}
