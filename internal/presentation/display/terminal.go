package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/penwyp/go-claude-usage/internal/presentation/layout"
	"github.com/penwyp/go-claude-usage/internal/util"
)

const (
	enterAlternateScreen = "\033[?1049h"
	exitAlternateScreen  = "\033[?1049l"
	clearToEnd           = "\033[J"
)

// TerminalDisplay redraws a layout full-screen, used by the widget surface
type TerminalDisplay struct {
	out      io.Writer
	strategy layout.LayoutStrategy

	mu                sync.Mutex
	inAlternateScreen bool
	lastFrame         []byte
	draws             int
}

// NewTerminalDisplay creates a display writing to out, stdout when nil
func NewTerminalDisplay(out io.Writer, strategy layout.LayoutStrategy) *TerminalDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDisplay{out: out, strategy: strategy}
}

// EnterAlternateScreen switches to the alternate screen buffer and hides the cursor
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, enterAlternateScreen, util.ClearScreen, util.ClearScrollback, util.MoveCursorHome, util.HideCursor)
	td.inAlternateScreen = true
	td.lastFrame = nil
}

// ExitAlternateScreen restores the normal screen buffer and the cursor
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, exitAlternateScreen)
	td.inAlternateScreen = false
}

// Render draws view, skipping the write when the frame is unchanged
func (td *TerminalDisplay) Render(view layout.View) error {
	var frame bytes.Buffer
	if err := td.strategy.Render(&frame, view); err != nil {
		return err
	}

	td.mu.Lock()
	defer td.mu.Unlock()
	if td.lastFrame != nil && bytes.Equal(frame.Bytes(), td.lastFrame) {
		return nil
	}

	var out bytes.Buffer
	out.WriteString(util.MoveCursorHome)
	out.WriteString(util.ClearScreen)
	out.Write(frame.Bytes())
	out.WriteString(clearToEnd)
	if _, err := td.out.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to draw widget: %w", err)
	}

	td.lastFrame = frame.Bytes()
	td.draws++
	util.LogDebug("Widget redrawn", util.F("layout", td.strategy.GetName()), util.F("draws", td.draws))
	return nil
}

// Draws returns how many frames have been written
func (td *TerminalDisplay) Draws() int {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.draws
}
