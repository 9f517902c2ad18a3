// Package format provides shared text formatting utilities for cards and
// terminal output.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spiffcs/ghfeed/internal/constants"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// Truncate shortens s to maxWidth terminal columns, ending with "...".
// ANSI sequences are stripped first.
func Truncate(s string, maxWidth int) string {
	plain := StripAnsi(s)
	if runewidth.StringWidth(plain) <= maxWidth {
		return plain
	}
	return runewidth.Truncate(plain, maxWidth, "...")
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, targetWidth int) string {
	w := DisplayWidth(s)
	if w >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-w)
}

// ShortSHA abbreviates a commit SHA.
func ShortSHA(sha string) string {
	if len(sha) <= constants.ShortSHALength {
		return sha
	}
	return sha[:constants.ShortSHALength]
}

// FirstLine returns the first line of msg and whether more lines follow.
func FirstLine(msg string) (string, bool) {
	msg = strings.TrimRight(msg, "\r\n")
	line, rest, found := strings.Cut(msg, "\n")
	return strings.TrimRight(line, "\r"), found && strings.TrimSpace(rest) != ""
}

// PageWindow labels how much of the stream is on screen, e.g.
// "page 2 · 47 events".
func PageWindow(page, shown int) string {
	noun := "events"
	if shown == 1 {
		noun = "event"
	}
	if page <= 0 {
		return fmt.Sprintf("%d %s", shown, noun)
	}
	return fmt.Sprintf("page %d · %d %s", page, shown, noun)
}

// Plural picks singular or plural by n.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
