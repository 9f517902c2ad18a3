package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/ghfeed/internal/format"
	"github.com/spiffcs/ghfeed/internal/model"
	"golang.org/x/term"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Width overrides the detected terminal width.
	Width int
}

// Column widths
const (
	colAge  = 16
	colKind = 14
	minText = 20
)

var (
	kindColors = map[model.Kind]*color.Color{
		model.KindPush:        color.New(color.FgGreen),
		model.KindPullRequest: color.New(color.FgMagenta),
		model.KindIssues:      color.New(color.FgYellow),
		model.KindRelease:     color.New(color.FgCyan, color.Bold),
		model.KindWatch:       color.New(color.FgYellow, color.Faint),
		model.KindFork:        color.New(color.FgBlue),
	}
	fallbackColor = color.New(color.FgRed)
	dim           = color.New(color.Faint)
)

func (f *TableFormatter) width() int {
	if f.Width > 0 {
		return f.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}

// ShortKind drops the "Event" suffix for display.
func ShortKind(k model.Kind) string {
	return strings.TrimSuffix(string(k), "Event")
}

// Format outputs one line per card
func (f *TableFormatter) Format(r Result, w io.Writer) error {
	if len(r.Cards) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	colText := f.width() - colAge - colKind - 4
	if colText < minText {
		colText = minText
	}

	fmt.Fprintf(w, "%s  %s  %s\n",
		format.PadRight("Age", colAge),
		format.PadRight("Kind", colKind),
		"Event")
	fmt.Fprintln(w, strings.Repeat("-", colAge+colKind+colText+4))

	for _, c := range r.Cards {
		kind := format.PadRight(format.Truncate(ShortKind(c.Kind), colKind), colKind)
		text := format.Truncate(c.Text, colText)
		switch {
		case c.Fallback:
			kind = fallbackColor.Sprint(kind)
		case kindColors[c.Kind] != nil:
			kind = kindColors[c.Kind].Sprint(kind)
		}

		fmt.Fprintf(w, "%s  %s  %s\n",
			dim.Sprint(format.PadRight(format.Truncate(c.TimeAgo, colAge), colAge)),
			kind,
			text)
	}

	fmt.Fprintln(w)
	footer := r.Window()
	if r.Filtered > 0 {
		footer += fmt.Sprintf(" (%d hidden)", r.Filtered)
	}
	if r.HasMore {
		footer += fmt.Sprintf(", more with --pages %d", r.Page+1)
	}
	fmt.Fprintln(w, dim.Sprint(footer))
	return nil
}
