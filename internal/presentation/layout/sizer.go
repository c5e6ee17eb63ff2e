package layout

import (
	"os"
	"strings"

	"github.com/penwyp/go-claude-usage/internal/util"
	"golang.org/x/term"
)

const (
	defaultWidth = 56
	minWidth     = 32
	maxWidth     = 72
)

// Package-level singleton Sizer instance
var sharedSizer = &Sizer{fd: int(os.Stdout.Fd())}

type Sizer struct {
	fd int
}

// displayWidth calculates the actual display width of a string containing wide runes
func (i Sizer) displayWidth(s string) int {
	return util.GetDisplayWidth(s)
}

// PadString pads a string to a specific display width
func (i Sizer) PadString(s string, width int, leftAlign bool) string {
	actualWidth := i.displayWidth(s)
	if actualWidth >= width {
		return s
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Spread places left and right at the edges of width, keeping at least one space between
func (i Sizer) Spread(left, right string, width int) string {
	gap := width - i.displayWidth(left) - i.displayWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// GetTerminalSize returns the terminal size or ok=false when stdout is not a terminal
func (i Sizer) GetTerminalSize() (width, height int, ok bool) {
	if !term.IsTerminal(i.fd) {
		return 0, 0, false
	}
	width, height, err := term.GetSize(i.fd)
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

// GetMaxWidth returns the content width for the current terminal
func (i Sizer) GetMaxWidth() int {
	termWidth, _, ok := i.GetTerminalSize()
	if !ok {
		return defaultWidth
	}
	return clampWidth(termWidth - 4)
}

// ResolveWidth returns requested when set, the terminal-derived width otherwise
func (i Sizer) ResolveWidth(requested int) int {
	if requested > 0 {
		return clampWidth(requested)
	}
	w := i.GetMaxWidth()
	util.LogDebugf("ResolveWidth %d", w)
	return w
}

func clampWidth(w int) int {
	if w < minWidth {
		return minWidth
	}
	if w > maxWidth {
		return maxWidth
	}
	return w
}
