package conscreen

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestScreenSnapshot(t *testing.T) {
	s := NewScreen(40, 10)
	defer s.Close()

	if _, err := s.Write([]byte("boot: hello\r\nhart 0 up\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if got := s.Line(0); got != "boot: hello" {
		t.Errorf("Line(0) = %q", got)
	}
	if got := s.Line(1); got != "hart 0 up" {
		t.Errorf("Line(1) = %q", got)
	}
	if got := s.Line(99); got != "" {
		t.Errorf("Line(99) = %q, want empty", got)
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot has %d lines, want 2: %q", len(snap), snap)
	}
}

func TestScreenHandlesEscapes(t *testing.T) {
	s := NewScreen(40, 5)
	defer s.Close()

	// Colored output renders as plain cell content.
	if _, err := s.Write([]byte("\x1b[1;32mOK\x1b[0m done\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.Line(0); got != "OK done" {
		t.Errorf("Line(0) = %q, want %q", got, "OK done")
	}
}

// lineCollector captures log records emitted by LogWriter.
type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) Enabled(context.Context, slog.Level) bool { return true }
func (c *lineCollector) WithAttrs([]slog.Attr) slog.Handler       { return c }
func (c *lineCollector) WithGroup(string) slog.Handler            { return c }

func (c *lineCollector) Handle(_ context.Context, r slog.Record) error {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "line" {
			c.mu.Lock()
			c.lines = append(c.lines, a.Value.String())
			c.mu.Unlock()
		}
		return true
	})
	return nil
}

func TestLogWriter(t *testing.T) {
	collector := &lineCollector{}
	w := NewLogWriter(slog.New(collector))

	if _, err := w.Write([]byte("\x1b[31mpanic\x1b[0m: bad\r\npartial")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(collector.lines) != 1 {
		t.Fatalf("%d lines logged, want 1: %q", len(collector.lines), collector.lines)
	}
	if collector.lines[0] != "panic: bad" {
		t.Errorf("logged line = %q, want escapes stripped", collector.lines[0])
	}

	w.Flush()
	if len(collector.lines) != 2 || collector.lines[1] != "partial" {
		t.Errorf("after Flush lines = %q, want trailing %q", collector.lines, "partial")
	}

	// Blank lines are dropped, not logged as empty records.
	if _, err := w.Write([]byte("\r\n\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(collector.lines) != 2 {
		t.Errorf("blank lines were logged: %q", collector.lines)
	}
}

func TestScreenWraps(t *testing.T) {
	s := NewScreen(8, 4)
	defer s.Close()

	if _, err := s.Write([]byte(strings.Repeat("a", 12))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.Line(0); got != "aaaaaaaa" {
		t.Errorf("Line(0) = %q", got)
	}
	if got := s.Line(1); got != "aaaa" {
		t.Errorf("Line(1) = %q", got)
	}
}
