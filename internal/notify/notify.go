// Package notify delivers short user-facing messages outside the feed:
// errors, warnings and progress the user should see even when the feed
// itself is not visible.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spiffcs/ghfeed/internal/constants"
)

// Notifier receives user-facing messages.
type Notifier interface {
	Notify(text string)
}

// Notification channel kinds accepted by New.
const (
	KindStderr = "stderr"
	KindOSC    = "osc"
	KindNone   = "none"
)

// Clean makes text safe for the notification channel: every rune that is
// not printable ASCII becomes '?', so control bytes such as ESC and BEL
// cannot reach the terminal, and the result is cut to NotifyMaxLength
// characters.
func Clean(text string) string {
	var b strings.Builder
	n := 0
	for _, r := range text {
		if n == constants.NotifyMaxLength {
			break
		}
		if r < ' ' || r > '~' {
			r = '?'
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// New returns the notifier for kind. Unknown kinds fall back to a
// Writer on w.
func New(kind string, w io.Writer) Notifier {
	switch kind {
	case KindNone:
		return Discard{}
	case KindOSC:
		return &OSC{TMUX: os.Getenv("TMUX") != ""}
	default:
		return NewWriter(w)
	}
}

// Writer prints notifications as colored lines.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	tag *color.Color
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, tag: color.New(color.FgCyan, color.Bold)}
}

// Notify writes "[ghfeed] text".
func (n *Writer) Notify(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "%s %s\n", n.tag.Sprintf("[%s]", constants.NotifyTitle), Clean(text))
}

// OSC sends desktop notifications with the OSC 777 escape sequence.
// Inside tmux the sequence is wrapped in a passthrough.
type OSC struct {
	TMUX bool
	// Out overrides the terminal device. When nil, /dev/tty is used with
	// stdout as a fallback.
	Out io.Writer
}

// Notify emits the escape sequence.
func (n *OSC) Notify(text string) {
	escape := Sequence(constants.NotifyTitle, Clean(text), n.TMUX)

	if n.Out != nil {
		_, _ = io.WriteString(n.Out, escape)
		return
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		_, _ = os.Stdout.WriteString(escape)
		return
	}
	defer tty.Close()
	_, _ = tty.WriteString(escape)
}

// Sequence builds the OSC 777 notify sequence for title and body.
func Sequence(title, body string, tmux bool) string {
	// ';' separates OSC fields
	body = strings.ReplaceAll(body, ";", ",")
	if tmux {
		return fmt.Sprintf("\033Ptmux;\033\033]777;notify;%s;%s\007\033\\", title, body)
	}
	return fmt.Sprintf("\033]777;notify;%s;%s\007", title, body)
}

// Discard drops every notification.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(string) {}
