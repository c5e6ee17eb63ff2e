package layout

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/util"
)

const (
	headerUsageLimits  = "Plan usage limits"
	headerWeeklyLimits = "Weekly limits"
	appTitle           = "Claude Usage"
)

// BaseStrategy provides common functionality for all layout strategies
type BaseStrategy struct {
}

// NewBaseStrategy creates a new BaseStrategy instance
func NewBaseStrategy() *BaseStrategy {
	return &BaseStrategy{}
}

// GetSizer returns the shared sizer instance
func (b *BaseStrategy) GetSizer() *Sizer {
	return sharedSizer
}

// SeparatorLine creates a separator line of the given width
func (b *BaseStrategy) SeparatorLine(width int) string {
	return util.FormatDimText(strings.Repeat("─", width))
}

// SectionHeader renders a bold section title
func (b *BaseStrategy) SectionHeader(title string) string {
	return util.FormatHeaderTitle(title)
}

// UsageRow renders a title line with the percentage on the right, the bar,
// and the reset subtitle when one is known
func (b *BaseStrategy) UsageRow(title, subtitle string, metric model.UsageMetric, c model.ColorPreference, width int, now time.Time) []string {
	lines := []string{
		b.GetSizer().Spread(title, fmt.Sprintf("%s used", util.FormatPercentage(metric.Percentage)), width),
		b.Bar(metric, c, width),
	}
	if subtitle != "" {
		if metric.ResetDate != nil {
			subtitle += " · " + util.FormatResetIn(*metric.ResetDate, now)
		}
		lines = append(lines, util.FormatDimText(subtitle))
	}
	return lines
}

// Bar renders the metric's progress in its configured colour
func (b *BaseStrategy) Bar(metric model.UsageMetric, c model.ColorPreference, width int) string {
	r, g, bl := c.RGB8()
	return util.ColoredProgressBar(metric.Progress(), width, r, g, bl)
}

// SessionSubtitle is the reset line under the session row
func (b *BaseStrategy) SessionSubtitle(m model.UsageMetric) string {
	if m.ResetTimeString == nil {
		return ""
	}
	return "Resets in " + *m.ResetTimeString
}

// ResetsSubtitle is the reset line under the weekly rows and the small widget
func (b *BaseStrategy) ResetsSubtitle(m model.UsageMetric) string {
	if m.ResetTimeString == nil {
		return ""
	}
	return "Resets " + *m.ResetTimeString
}

// LastUpdated renders the footer describing snapshot age
func (b *BaseStrategy) LastUpdated(updated, now time.Time) string {
	return util.FormatDimText("Last updated: " + LastUpdatedText(updated, now))
}

// LastUpdatedText describes how long ago updated was, relative to now
func LastUpdatedText(updated, now time.Time) string {
	if updated.IsZero() {
		return "never"
	}
	age := now.Sub(updated)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%d min ago", int(age/time.Minute))
	case age < 24*time.Hour:
		hours := int(age / time.Hour)
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return updated.In(now.Location()).Format("1/2/06, 3:04 PM")
	}
}

// StatusLines renders the state shown when there is no snapshot
func (b *BaseStrategy) StatusLines(view View) []string {
	switch {
	case view.Loading:
		return []string{"Loading usage data..."}
	case view.LastError != "":
		return []string{util.FormatErrorText("Unable to load usage"), view.LastError}
	default:
		return []string{util.FormatDimText("No usage data")}
	}
}

// UsageSections renders the session row followed by the weekly rows
func (b *BaseStrategy) UsageSections(snap *model.UsageSnapshot, prefs model.Preferences, width int, now time.Time, includeSonnet bool) []string {
	lines := []string{b.SectionHeader(headerUsageLimits), ""}
	lines = append(lines, b.UsageRow("Current session", b.SessionSubtitle(snap.Session),
		snap.Session, prefs.SessionColor, width, now)...)
	lines = append(lines, "", b.SectionHeader(headerWeeklyLimits), "")
	lines = append(lines, b.UsageRow("All models", b.ResetsSubtitle(snap.WeeklyAll),
		snap.WeeklyAll, prefs.WeeklyAllColor, width, now)...)
	if includeSonnet {
		lines = append(lines, "")
		lines = append(lines, b.UsageRow("Sonnet only", b.ResetsSubtitle(snap.WeeklySonnet),
			snap.WeeklySonnet, prefs.WeeklySonnetColor, width, now)...)
	}
	return lines
}

// WriteLines writes each line followed by a newline
func (b *BaseStrategy) WriteLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
