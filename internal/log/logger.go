// Package log is the process-wide leveled logger. Every record that passes
// the verbosity gate is written as slog text and, when a notifier is set,
// forwarded to it as "level: message".
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: progress messages, page loads, preference changes
	LevelDebug        // -vv: API calls, readiness polls, requests served
	LevelTrace        // -vvv: full details
)

// slogLevelTrace sits below slog's debug level.
const slogLevelTrace = slog.Level(-8)

var (
	mu         sync.Mutex
	verbosity  int
	logger     *slog.Logger
	output     io.Writer
	inProgress bool
	notifier   func(string)
)

// notifyHandler forwards every handled record to the notifier.
type notifyHandler struct {
	slog.Handler
}

func (h notifyHandler) Handle(ctx context.Context, r slog.Record) error {
	mu.Lock()
	fn := notifier
	mu.Unlock()
	if fn != nil {
		fn(levelName(r.Level) + ": " + r.Message)
	}
	return h.Handler.Handle(ctx, r)
}

func (h notifyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return notifyHandler{h.Handler.WithAttrs(attrs)}
}

func (h notifyHandler) WithGroup(name string) slog.Handler {
	return notifyHandler{h.Handler.WithGroup(name)}
}

func levelName(l slog.Level) string {
	if l <= slogLevelTrace {
		return "trace"
	}
	return strings.ToLower(l.String())
}

// slogLevel maps a verbosity to the lowest slog level that is emitted.
func slogLevel(v int) slog.Level {
	switch {
	case v >= LevelTrace:
		return slogLevelTrace
	case v >= LevelDebug:
		return slog.LevelDebug
	case v >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// Initialize sets up the global logger with the specified verbosity level
func Initialize(level int, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	verbosity = level
	output = w
	logger = slog.New(notifyHandler{slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel(level),
	})})
}

func emit(level slog.Level, msg string, args ...any) {
	mu.Lock()
	l := logger
	if l.Enabled(context.Background(), level) && inProgress {
		// Keep the progress line instead of writing over it
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
	mu.Unlock()
	l.Log(context.Background(), level, msg, args...)
}

// Info logs at info level (-v)
func Info(msg string, args ...any) { emit(slog.LevelInfo, msg, args...) }

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) { emit(slog.LevelDebug, msg, args...) }

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) { emit(slogLevelTrace, msg, args...) }

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) { emit(slog.LevelWarn, msg, args...) }

// Error logs at error level (always visible)
func Error(msg string, args ...any) { emit(slog.LevelError, msg, args...) }

// Progress rewrites the current progress line. Only shown at info level
// or higher.
func Progress(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo {
		inProgress = true
		_, _ = fmt.Fprintf(output, "\r\033[K"+format, args...)
	}
}

// ProgressDone completes a progress line with "done" and newline
func ProgressDone() {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// ProgressClear clears the current progress line
func ProgressClear() {
	mu.Lock()
	defer mu.Unlock()
	if inProgress {
		_, _ = fmt.Fprint(output, "\r\033[K")
		inProgress = false
	}
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool { return Verbosity() >= LevelInfo }

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool { return Verbosity() >= LevelDebug }

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool { return Verbosity() >= LevelTrace }

// Verbosity returns the current verbosity level
func Verbosity() int {
	mu.Lock()
	defer mu.Unlock()
	return verbosity
}

// SetNotifier forwards every emitted record, as "level: msg", to fn.
// A nil fn stops forwarding.
func SetNotifier(fn func(string)) {
	mu.Lock()
	defer mu.Unlock()
	notifier = fn
}

func init() {
	Initialize(LevelQuiet, os.Stderr)
}
