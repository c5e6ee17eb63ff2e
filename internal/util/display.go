package util

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

// Terminal control sequences
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"
	ColorRed   = "\033[31m"

	ClearScreen     = "\033[2J"   // Clear entire screen
	ClearScrollback = "\033[3J"   // Clear scrollback buffer
	MoveCursorHome  = "\033[H"    // Move cursor to home position
	HideCursor      = "\033[?25l" // Hide cursor
	ShowCursor      = "\033[?25h" // Show cursor
)

const (
	barFilled = "█"
	barEmpty  = "░"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// CreateProgressBar renders progress (0..1, clamped) as a bar of exactly
// width cells
func CreateProgressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(lo.Clamp(progress, 0, 1) * float64(width))
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}

// ColoredProgressBar renders a progress bar whose filled part is drawn in
// the given 0..255 RGB colour. Colour is dropped when output is not a terminal.
func ColoredProgressBar(progress float64, width int, r, g, b int) string {
	bar := CreateProgressBar(progress, width)
	filled := strings.Count(bar, barFilled)
	if filled == 0 {
		return bar
	}
	paint := color.RGB(r, g, b)
	return paint.Sprint(strings.Repeat(barFilled, filled)) + strings.Repeat(barEmpty, width-filled)
}

// FormatHeaderTitle formats main header titles (Bold)
func FormatHeaderTitle(title string) string {
	if color.NoColor {
		return title
	}
	return fmt.Sprintf("%s%s%s", ColorBold, title, ColorReset)
}

// FormatErrorText formats an error line (Red)
func FormatErrorText(text string) string {
	if color.NoColor {
		return text
	}
	return fmt.Sprintf("%s%s%s", ColorRed, text, ColorReset)
}

// FormatDimText formats secondary text such as timestamps
func FormatDimText(text string) string {
	if color.NoColor {
		return text
	}
	return fmt.Sprintf("%s%s%s", ColorDim, text, ColorReset)
}
