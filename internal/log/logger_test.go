package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	if Verbosity() != LevelInfo {
		t.Errorf("expected verbosity %d, got %d", LevelInfo, Verbosity())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	// Test at debug level so all messages are captured
	Initialize(LevelTrace, &buf)

	// These should not panic
	Info("test info", "key", "value")
	Debug("test debug", "key", "value")
	Trace("test trace", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")

	if buf.Len() == 0 {
		t.Error("expected log output, got none")
	}
}

func TestLogLevelChecks(t *testing.T) {
	var buf bytes.Buffer

	Initialize(LevelDebug, &buf)

	if !IsInfo() {
		t.Error("expected IsInfo() to be true at debug level")
	}
	if !IsDebug() {
		t.Error("expected IsDebug() to be true at debug level")
	}
	if IsTrace() {
		t.Error("expected IsTrace() to be false at debug level")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	// These should not panic
	Progress("Loading %d%%", 50)
	ProgressDone()

	Progress("Another progress")
	ProgressClear()
}

func TestProgressLineIsKept(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("loading page %d of %d", 2, 3)
	Warn("page failed")

	out := buf.String()
	if !strings.Contains(out, "loading page 2 of 3\n") {
		t.Errorf("expected progress line to end before the warning, got %q", out)
	}
	if !strings.Contains(out, "page failed") {
		t.Errorf("expected warning in output, got %q", out)
	}
}

func TestQuietHidesInfo(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("hidden")
	Progress("hidden progress")
	if buf.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", buf.String())
	}
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		level    int
		isInfo   bool
		isDebug  bool
		isTrace  bool
	}{
		{LevelQuiet, false, false, false},
		{LevelInfo, true, false, false},
		{LevelDebug, true, true, false},
		{LevelTrace, true, true, true},
	}

	var buf bytes.Buffer
	for _, tt := range tests {
		Initialize(tt.level, &buf)

		if IsInfo() != tt.isInfo {
			t.Errorf("at level %d: expected IsInfo()=%v, got %v", tt.level, tt.isInfo, IsInfo())
		}
		if IsDebug() != tt.isDebug {
			t.Errorf("at level %d: expected IsDebug()=%v, got %v", tt.level, tt.isDebug, IsDebug())
		}
		if IsTrace() != tt.isTrace {
			t.Errorf("at level %d: expected IsTrace()=%v, got %v", tt.level, tt.isTrace, IsTrace())
		}
	}
}

func TestSetNotifier(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	var got []string
	SetNotifier(func(s string) { got = append(got, s) })
	defer SetNotifier(nil)

	Info("hidden at quiet")
	Warn("rate limit low")
	Error("failed to load page", "page", 2)
	Trace("hidden at quiet too")

	want := []string{"warn: rate limit low", "error: failed to load page"}
	if len(got) != len(want) {
		t.Fatalf("expected %d forwarded messages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNotifierLevelNames(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelTrace, &buf)

	var got []string
	SetNotifier(func(s string) { got = append(got, s) })
	defer SetNotifier(nil)

	Info("a")
	Debug("b")
	Trace("c")

	want := []string{"info: a", "debug: b", "trace: c"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, got)
	}
}
