package commands

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/presentation/display"
	"github.com/penwyp/go-claude-usage/internal/presentation/layout"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	widgetSize string
	widgetOnce bool
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Full-screen usage view that follows the shared store",
	Long: `Draws the usage view full-screen and redraws it whenever the producer publishes
new data, and on the preferred refresh interval. Sample data is shown until the
first refresh has been stored.

Sizes:
  small   - current session only
  medium  - session and weekly (all models)
  large   - every limit and a summary`,
	RunE: runWidget,
}

func init() {
	rootCmd.AddCommand(widgetCmd)

	widgetCmd.Flags().StringVar(&widgetSize, "size", string(layout.StyleMedium),
		"Widget size (small, medium, large)")
	widgetCmd.Flags().BoolVar(&widgetOnce, "once", false,
		"Draw a single frame and exit")
}

// widgetSource is the read side of the shared store
type widgetSource interface {
	LoadUsage(ctx context.Context) *model.UsageSnapshot
	LoadPreferences(ctx context.Context) model.Preferences
}

func runWidget(cmd *cobra.Command, args []string) error {
	style, err := layout.ParseStyle(widgetSize)
	if err != nil {
		return err
	}
	if style == layout.StylePopover {
		return errors.New("popover is not a widget size; use the show command")
	}

	cfg, err := initRuntime(cmd)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	st, shared, err := openShared(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	td := display.NewTerminalDisplay(cmd.OutOrStdout(), layout.GetLayoutStrategy(style))
	loop := &widgetLoop{source: shared, display: td, now: util.GetTimeProvider().Now}

	if widgetOnce {
		loop.draw(ctx)
		return nil
	}

	changes, err := st.Watch(ctx)
	if err != nil {
		util.LogWarn("Store watch unavailable, redrawing on the timer only", util.F("error", err))
		changes = nil
	}
	loop.changes = changes

	if term.IsTerminal(int(os.Stdout.Fd())) {
		td.EnterAlternateScreen()
		defer td.ExitAlternateScreen()
	}

	err = loop.run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type widgetLoop struct {
	source  widgetSource
	display *display.TerminalDisplay
	changes <-chan struct{}
	now     func() time.Time
}

// draw renders the current store contents and returns the interval until the next timed redraw
func (w *widgetLoop) draw(ctx context.Context) time.Duration {
	prefs := w.source.LoadPreferences(ctx)
	view := layout.WidgetView(w.source.LoadUsage(ctx), prefs, w.now())
	if err := w.display.Render(view); err != nil {
		util.LogError("Failed to draw widget", util.F("error", err))
	}
	return prefs.EffectiveRefreshInterval()
}

func (w *widgetLoop) run(ctx context.Context) error {
	interval := w.draw(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	changes := w.changes
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			util.LogDebug("Store changed, redrawing widget")
		}

		if next := w.draw(ctx); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
}
