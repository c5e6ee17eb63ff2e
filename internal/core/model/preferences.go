package model

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// MinRefreshIntervalMinutes is the lower bound applied to every refresh schedule
const MinRefreshIntervalMinutes = 5

// DefaultRefreshIntervalMinutes is used when no preference has been saved
const DefaultRefreshIntervalMinutes = 15

// RefreshIntervalOptions are the intervals offered to the user, in minutes
var RefreshIntervalOptions = []int{5, 15, 30, 60}

// ColorPreference is an RGBA colour with components in the 0..1 range
type ColorPreference struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

var (
	DefaultSessionColor      = ColorPreference{Red: 0.22, Green: 0.51, Blue: 0.96, Alpha: 1.0}
	DefaultWeeklyAllColor    = ColorPreference{Red: 0.5, Green: 0.2, Blue: 0.8, Alpha: 1.0}
	DefaultWeeklySonnetColor = ColorPreference{Red: 0.95, Green: 0.55, Blue: 0.2, Alpha: 1.0}
)

// RGB8 returns the colour as 8-bit channels
func (c ColorPreference) RGB8() (int, int, int) {
	return to8(c.Red), to8(c.Green), to8(c.Blue)
}

// Validate checks every channel is inside 0..1
func (c ColorPreference) Validate() error {
	for name, v := range map[string]float64{"red": c.Red, "green": c.Green, "blue": c.Blue, "alpha": c.Alpha} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s component %.3f out of range 0..1", name, v)
		}
	}
	return nil
}

func to8(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return int(v*255 + 0.5)
}

// Preferences are the user settings shared between producer and readers
type Preferences struct {
	SessionColor           ColorPreference `json:"sessionColor"`
	WeeklyAllColor         ColorPreference `json:"weeklyAllColor"`
	WeeklySonnetColor      ColorPreference `json:"weeklySonnetColor"`
	RefreshIntervalMinutes int             `json:"refreshIntervalMinutes"`
}

// DefaultPreferences returns the factory settings
func DefaultPreferences() Preferences {
	return Preferences{
		SessionColor:           DefaultSessionColor,
		WeeklyAllColor:         DefaultWeeklyAllColor,
		WeeklySonnetColor:      DefaultWeeklySonnetColor,
		RefreshIntervalMinutes: DefaultRefreshIntervalMinutes,
	}
}

// ColorFor returns the bar colour configured for a category
func (p Preferences) ColorFor(c Category) ColorPreference {
	switch c {
	case CategoryWeeklyAll:
		return p.WeeklyAllColor
	case CategoryWeeklySonnet:
		return p.WeeklySonnetColor
	default:
		return p.SessionColor
	}
}

// EffectiveRefreshInterval applies the five minute floor
func (p Preferences) EffectiveRefreshInterval() time.Duration {
	minutes := lo.Max([]int{p.RefreshIntervalMinutes, MinRefreshIntervalMinutes})
	return time.Duration(minutes) * time.Minute
}

// Validate checks the interval is one of the offered options and colours are in range
func (p Preferences) Validate() error {
	if !lo.Contains(RefreshIntervalOptions, p.RefreshIntervalMinutes) {
		return fmt.Errorf("refresh interval %d minutes is not one of %v", p.RefreshIntervalMinutes, RefreshIntervalOptions)
	}
	for _, c := range Categories {
		if err := p.ColorFor(c).Validate(); err != nil {
			return fmt.Errorf("%s color: %w", c, err)
		}
	}
	return nil
}
