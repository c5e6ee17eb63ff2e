package layout

import (
	"io"

	"github.com/penwyp/go-claude-usage/internal/util"
)

// PopoverLayoutStrategy renders the one-shot view with every category and
// the last error
type PopoverLayoutStrategy struct {
	BaseStrategy
}

func (s *PopoverLayoutStrategy) GetName() string {
	return "Popover"
}

func (s *PopoverLayoutStrategy) Render(w io.Writer, view View) error {
	width := s.GetSizer().ResolveWidth(view.Width)

	lines := []string{s.SectionHeader(appTitle), s.SeparatorLine(width)}

	if view.Snapshot == nil {
		lines = append(lines, s.StatusLines(view)...)
		return s.WriteLines(w, lines)
	}

	lines = append(lines, s.UsageSections(view.Snapshot, view.Preferences, width, view.Now, true)...)
	lines = append(lines, s.SeparatorLine(width), s.LastUpdated(view.Snapshot.LastUpdated, view.Now))

	if view.Loading {
		lines = append(lines, util.FormatDimText("Refreshing..."))
	}
	if view.LastError != "" {
		lines = append(lines, util.FormatErrorText("Last refresh failed: "+view.LastError))
	}
	return s.WriteLines(w, lines)
}
