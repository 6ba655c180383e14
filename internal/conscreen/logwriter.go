package conscreen

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// LogWriter forwards console output to a logger, one line per record, with
// escape sequences stripped. Useful when the firmware console should land in
// structured logs instead of a terminal.
type LogWriter struct {
	log *slog.Logger
	buf strings.Builder
}

// NewLogWriter creates a LogWriter. A nil logger means slog.Default().
func NewLogWriter(log *slog.Logger) *LogWriter {
	if log == nil {
		log = slog.Default()
	}
	return &LogWriter{log: log}
}

// Write buffers console bytes and emits a log record per completed line.
// It never fails.
func (w *LogWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			w.flushLine()
			continue
		}
		w.buf.WriteByte(b)
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *LogWriter) Flush() {
	if w.buf.Len() > 0 {
		w.flushLine()
	}
}

func (w *LogWriter) flushLine() {
	line := strings.TrimRight(ansi.Strip(w.buf.String()), "\r")
	w.buf.Reset()
	if line == "" {
		return
	}
	w.log.Info("console", "line", line)
}
