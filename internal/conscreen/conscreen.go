// Package conscreen provides headless sinks for the platform console: a
// virtual terminal screen that can be snapshotted as text, and a writer that
// forwards console output line by line to a logger.
package conscreen

import (
	"strings"

	"github.com/charmbracelet/x/vt"
)

// Screen is an in-memory terminal a console's Putc stream can be wired to.
// It implements io.Writer; the rendered grid can be read back with Line and
// Snapshot, which makes console output assertable without a real terminal.
type Screen struct {
	emu *vt.SafeEmulator
}

// NewScreen creates a screen with the given grid size.
func NewScreen(cols, rows int) *Screen {
	return &Screen{emu: vt.NewSafeEmulator(cols, rows)}
}

// Write feeds console bytes to the terminal. It never fails.
func (s *Screen) Write(p []byte) (int, error) {
	return s.emu.Write(p)
}

// Line returns the rendered text of one row, right-trimmed. Rows outside the
// grid are empty.
func (s *Screen) Line(y int) string {
	if y < 0 || y >= s.emu.Height() {
		return ""
	}

	var sb strings.Builder
	for x := 0; x < s.emu.Width(); {
		w := 1
		content := " "
		if cell := s.emu.CellAt(x, y); cell != nil {
			content = cell.Content
			if cell.Width > 1 {
				w = cell.Width
			}
		}
		sb.WriteString(content)
		x += w
	}
	return strings.TrimRight(sb.String(), " ")
}

// Snapshot returns all rows, with trailing empty rows removed.
func (s *Screen) Snapshot() []string {
	lines := make([]string, s.emu.Height())
	last := -1
	for y := range lines {
		lines[y] = s.Line(y)
		if lines[y] != "" {
			last = y
		}
	}
	return lines[:last+1]
}

// Resize changes the grid size.
func (s *Screen) Resize(cols, rows int) {
	s.emu.Resize(cols, rows)
}

// Close releases the emulator.
func (s *Screen) Close() error {
	return s.emu.Close()
}
