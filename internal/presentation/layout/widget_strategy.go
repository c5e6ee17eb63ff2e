package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-claude-usage/internal/util"
)

const sampleDataNote = "Sample data, waiting for the first refresh"

// SmallWidgetStrategy shows the session only
type SmallWidgetStrategy struct {
	BaseStrategy
}

func (s *SmallWidgetStrategy) GetName() string {
	return "Small Widget"
}

func (s *SmallWidgetStrategy) Render(w io.Writer, view View) error {
	width := s.GetSizer().ResolveWidth(view.Width)
	if width > minWidth {
		width = minWidth
	}
	session := view.Snapshot.Session

	lines := []string{
		s.SectionHeader(appTitle),
		"",
		fmt.Sprintf("%s session", util.FormatPercentage(session.Percentage)),
		s.Bar(session, view.Preferences.SessionColor, width),
	}
	if sub := s.ResetsSubtitle(session); sub != "" {
		lines = append(lines, util.FormatDimText(sub))
	}
	if view.IsPlaceholder {
		lines = append(lines, "", util.FormatDimText(sampleDataNote))
	}
	return s.WriteLines(w, lines)
}

// MediumWidgetStrategy shows the session and the weekly all-models usage
type MediumWidgetStrategy struct {
	BaseStrategy
}

func (s *MediumWidgetStrategy) GetName() string {
	return "Medium Widget"
}

func (s *MediumWidgetStrategy) Render(w io.Writer, view View) error {
	width := s.GetSizer().ResolveWidth(view.Width)

	lines := s.UsageSections(view.Snapshot, view.Preferences, width, view.Now, false)
	lines = append(append(lines, ""), s.footer(view)...)
	return s.WriteLines(w, lines)
}

func (b *BaseStrategy) footer(view View) []string {
	if view.IsPlaceholder {
		return []string{util.FormatDimText(sampleDataNote)}
	}
	return []string{b.LastUpdated(view.Snapshot.LastUpdated, view.Now)}
}

// LargeWidgetStrategy shows every category and a summary line
type LargeWidgetStrategy struct {
	BaseStrategy
}

func (s *LargeWidgetStrategy) GetName() string {
	return "Large Widget"
}

func (s *LargeWidgetStrategy) Render(w io.Writer, view View) error {
	width := s.GetSizer().ResolveWidth(view.Width)
	snap := view.Snapshot

	lines := s.UsageSections(snap, view.Preferences, width, view.Now, true)
	lines = append(lines, "", s.SeparatorLine(width), s.SectionHeader("Summary"))

	badges := []string{
		s.badge("Session", snap.Session.Percentage),
		s.badge("Weekly", snap.WeeklyAll.Percentage),
		s.badge("Sonnet", snap.WeeklySonnet.Percentage),
	}
	lines = append(lines, strings.Join(badges, "   "), "")
	lines = append(lines, s.footer(view)...)
	return s.WriteLines(w, lines)
}

func (s *LargeWidgetStrategy) badge(label string, percentage int) string {
	return fmt.Sprintf("%s %s", util.FormatDimText(label), util.FormatPercentage(percentage))
}
