package formatter

import (
	"fmt"
	"io"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/presentation/layout"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// TextFormatter prints the popover layout
type TextFormatter struct {
	width int
}

// NewTextFormatter creates a text formatter; width 0 follows the terminal
func NewTextFormatter(width int) *TextFormatter {
	return &TextFormatter{width: width}
}

func (f *TextFormatter) FormatUsage(w io.Writer, report Report) error {
	view := layout.View{
		Snapshot:    report.Snapshot,
		Preferences: report.Preferences,
		LastError:   report.LastError,
		Now:         report.GeneratedAt,
		Width:       f.width,
	}
	return layout.GetLayoutStrategy(layout.StylePopover).Render(w, view)
}

func (f *TextFormatter) FormatPreferences(w io.Writer, prefs model.Preferences) error {
	lines := []string{
		util.FormatHeaderTitle("Preferences"),
		fmt.Sprintf("Refresh interval: %d min (effective %s)",
			prefs.RefreshIntervalMinutes, util.FormatDuration(prefs.EffectiveRefreshInterval())),
	}
	for _, c := range model.Categories {
		pref := prefs.ColorFor(c)
		r, g, b := pref.RGB8()
		lines = append(lines, fmt.Sprintf("%s color: %s %d,%d,%d",
			c.Title(), util.ColoredProgressBar(1, 4, r, g, b), r, g, b))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
