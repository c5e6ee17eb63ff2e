package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/presentation/formatter"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	prefsRefreshInterval   int
	prefsSessionColor      string
	prefsWeeklyAllColor    string
	prefsWeeklySonnetColor string
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Print the shared preferences",
	Long: `Preferences are stored next to the usage data and read by every process: the
daemon picks up a new refresh interval without a restart, the widget redraws with
new colours.`,
	RunE: runPrefsShow,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change preferences and notify readers",
	Example: `  go-claude-usage prefs set --refresh-interval 30
  go-claude-usage prefs set --session-color 56,130,245 --weekly-all-color "#8033cc"`,
	RunE: runPrefsSet,
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	RunE:  runPrefsReset,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsSetCmd, prefsResetCmd)

	prefsSetCmd.Flags().IntVar(&prefsRefreshInterval, "refresh-interval", model.DefaultRefreshIntervalMinutes,
		fmt.Sprintf("Refresh interval in minutes (one of %v)", model.RefreshIntervalOptions))
	prefsSetCmd.Flags().StringVar(&prefsSessionColor, "session-color", "",
		"Session bar colour as r,g,b (0-255) or #rrggbb")
	prefsSetCmd.Flags().StringVar(&prefsWeeklyAllColor, "weekly-all-color", "",
		"Weekly (all models) bar colour")
	prefsSetCmd.Flags().StringVar(&prefsWeeklySonnetColor, "weekly-sonnet-color", "",
		"Weekly (Sonnet only) bar colour")
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	cfg, err := initRuntime(cmd)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	out, err := formatter.NewFormatter(outputFormat)
	if err != nil {
		return err
	}

	st, shared, err := openShared(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return out.FormatPreferences(cmd.OutOrStdout(), shared.LoadPreferences(cmd.Context()))
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	settable := []string{"refresh-interval", "session-color", "weekly-all-color", "weekly-sonnet-color"}
	if !lo.SomeBy(settable, flags.Changed) {
		return fmt.Errorf("nothing to set; pass at least one of --%s", strings.Join(settable, ", --"))
	}

	return updatePreferences(cmd, func(prefs *model.Preferences) error {
		if flags.Changed("refresh-interval") {
			prefs.RefreshIntervalMinutes = prefsRefreshInterval
		}
		colors := []struct {
			flag   string
			value  string
			target *model.ColorPreference
		}{
			{"session-color", prefsSessionColor, &prefs.SessionColor},
			{"weekly-all-color", prefsWeeklyAllColor, &prefs.WeeklyAllColor},
			{"weekly-sonnet-color", prefsWeeklySonnetColor, &prefs.WeeklySonnetColor},
		}
		for _, c := range colors {
			if !flags.Changed(c.flag) {
				continue
			}
			parsed, err := parseColor(c.value)
			if err != nil {
				return fmt.Errorf("--%s: %w", c.flag, err)
			}
			*c.target = parsed
		}
		return nil
	})
}

func runPrefsReset(cmd *cobra.Command, args []string) error {
	return updatePreferences(cmd, func(prefs *model.Preferences) error {
		*prefs = model.DefaultPreferences()
		return nil
	})
}

func updatePreferences(cmd *cobra.Command, apply func(*model.Preferences) error) error {
	cfg, err := initRuntime(cmd)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	out, err := formatter.NewFormatter(outputFormat)
	if err != nil {
		return err
	}

	st, shared, err := openShared(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	prefs := shared.LoadPreferences(ctx)
	if err := apply(&prefs); err != nil {
		return err
	}
	if err := shared.SavePreferences(ctx, prefs); err != nil {
		return err
	}
	shared.NotifyReaders(ctx)

	util.LogInfo("Preferences updated", util.F("refresh_interval", prefs.RefreshIntervalMinutes))
	return out.FormatPreferences(cmd.OutOrStdout(), prefs)
}

// parseColor accepts "r,g,b" with 0-255 channels or "#rrggbb"
func parseColor(s string) (model.ColorPreference, error) {
	s = strings.TrimSpace(s)
	var channels []int

	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 {
			return model.ColorPreference{}, fmt.Errorf("invalid colour %q: expected #rrggbb", s)
		}
		for i := 0; i < 6; i += 2 {
			v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
			if err != nil {
				return model.ColorPreference{}, fmt.Errorf("invalid colour %q: %w", s, err)
			}
			channels = append(channels, int(v))
		}
	} else {
		parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
		if len(parts) != 3 {
			return model.ColorPreference{}, fmt.Errorf("invalid colour %q: expected r,g,b", s)
		}
		for _, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil || v < 0 || v > 255 {
				return model.ColorPreference{}, fmt.Errorf("invalid colour %q: channels must be 0-255", s)
			}
			channels = append(channels, v)
		}
	}

	return model.ColorPreference{
		Red:   float64(channels[0]) / 255,
		Green: float64(channels[1]) / 255,
		Blue:  float64(channels[2]) / 255,
		Alpha: 1.0,
	}, nil
}
