package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(level)
	l.SetOutput(&buf)
	l.core.now = func() time.Time { return time.Date(2024, 1, 1, 12, 30, 45, 0, time.UTC) }
	return l, &buf
}

func TestLoggerFiltersByLevel(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)
	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.HasPrefix(out, "12:30:45.000") {
		t.Errorf("timestamp prefix missing: %q", out)
	}
}

func TestNamedSharesSink(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)
	g := l.Named("gallery").Named("focus")
	if g.Name() != "gallery.focus" {
		t.Fatalf("Name() = %q", g.Name())
	}

	g.Info("opened tile %d", 3)
	if !strings.Contains(buf.String(), "[INFO] gallery.focus: opened tile 3") {
		t.Errorf("named line = %q", buf.String())
	}

	l.SetLevel(LevelError)
	if g.Enabled(LevelInfo) {
		t.Error("child should follow parent level")
	}
}

func TestCounts(t *testing.T) {
	l, _ := newTestLogger(LevelInfo)
	child := l.Named("x")
	l.Debug("dropped")
	l.Warn("a")
	child.Warn("b")
	l.Error("c")

	if got := l.Count(LevelWarn); got != 2 {
		t.Errorf("warn count = %d, want 2", got)
	}
	if got := l.Count(LevelDebug); got != 0 {
		t.Errorf("debug count = %d, want 0 (filtered)", got)
	}
	if got := child.Count(LevelError); got != 1 {
		t.Errorf("error count via child = %d, want 1", got)
	}
	if got := l.Count(Level(42)); got != 0 {
		t.Errorf("out of range level count = %d", got)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("Discard logger should not be enabled at any level")
	}
}
