package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DEBUG,
		"info":    INFO,
		"warn":    WARN,
		"warning": WARN,
		"error":   ERROR,
		"ERROR":   ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, []io.Writer{&buf}, "test")

	l.Debug("dropped debug")
	l.Info("dropped info")
	l.Warn("kept warn")
	l.Error("kept error")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("output contains filtered lines: %q", out)
	}
	if !strings.Contains(out, "WARN: kept warn") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "ERROR: kept error") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLoggerFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, []io.Writer{&buf}, "test")

	// The no-arg pass-through of a string containing a verb is intentional;
	// spreading an empty slice keeps vet's printf checks from flagging it
	// while still exercising the len(args) == 0 path.
	var noArgs []interface{}
	l.Info("plain %s not formatted", noArgs...)
	l.Info("count %d", 42)

	out := buf.String()
	if !strings.Contains(out, "plain %s not formatted") {
		t.Errorf("no-arg message should pass through verbatim: %q", out)
	}
	if !strings.Contains(out, "count 42") {
		t.Errorf("formatted message missing: %q", out)
	}
}

type captureBroadcaster struct {
	lines []Line
}

func (c *captureBroadcaster) BroadcastLog(line Line) {
	c.lines = append(c.lines, line)
}

func TestLoggerBroadcast(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, []io.Writer{&buf}, "conn")

	cb := &captureBroadcaster{}
	l.SetBroadcaster(cb)

	l.Info("hello")
	l.Debug("filtered, not broadcast")

	if len(cb.lines) != 1 {
		t.Fatalf("expected 1 broadcast line, got %d", len(cb.lines))
	}
	if cb.lines[0].Source != "conn" || cb.lines[0].Level != "info" || cb.lines[0].Message != "hello" {
		t.Errorf("unexpected broadcast line: %+v", cb.lines[0])
	}
}

func TestCreateLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "pilotdeck.log")

	f, err := CreateLogFile(logPath, 10)
	if err != nil {
		t.Fatalf("CreateLogFile: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("line\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestGlobalLoggerFallback(t *testing.T) {
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("GetGlobalLogger returned nil without a global set")
	}
}
