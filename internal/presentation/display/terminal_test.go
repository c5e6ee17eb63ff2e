package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/presentation/layout"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetView(percentage int) layout.View {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	snap := &model.UsageSnapshot{
		Session:      model.NewUsageMetric(percentage, "4:59pm", nil),
		WeeklyAll:    model.NewUsageMetric(53, "Mon 1:00 PM", nil),
		WeeklySonnet: model.NewUsageMetric(23, "", nil),
		LastUpdated:  now,
	}
	view := layout.WidgetView(snap, model.DefaultPreferences(), now)
	view.Width = 40
	return view
}

func TestTerminalDisplayRender(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	td := NewTerminalDisplay(&out, layout.GetLayoutStrategy(layout.StyleSmall))

	require.NoError(t, td.Render(widgetView(30)))
	assert.True(t, strings.HasPrefix(out.String(), util.MoveCursorHome+util.ClearScreen))
	assert.Contains(t, out.String(), "30% session")
	assert.Equal(t, 1, td.Draws())

	// identical frame is not redrawn
	out.Reset()
	require.NoError(t, td.Render(widgetView(30)))
	assert.Empty(t, out.String())
	assert.Equal(t, 1, td.Draws())

	require.NoError(t, td.Render(widgetView(31)))
	assert.Contains(t, out.String(), "31% session")
	assert.Equal(t, 2, td.Draws())
}

func TestTerminalDisplayAlternateScreen(t *testing.T) {
	var out bytes.Buffer
	td := NewTerminalDisplay(&out, layout.GetLayoutStrategy(layout.StyleMedium))

	td.EnterAlternateScreen()
	td.EnterAlternateScreen()
	assert.Equal(t, 1, strings.Count(out.String(), enterAlternateScreen))
	assert.Contains(t, out.String(), util.HideCursor)

	td.ExitAlternateScreen()
	td.ExitAlternateScreen()
	assert.Equal(t, 1, strings.Count(out.String(), exitAlternateScreen))
	assert.Contains(t, out.String(), util.ShowCursor)
}
