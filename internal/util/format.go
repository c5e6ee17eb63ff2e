package util

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as "3h 59m", "59m" or "<1m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours >= 24 {
		return fmt.Sprintf("%dd %dh", hours/24, hours%24)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatResetIn describes how long until reset, relative to now
func FormatResetIn(reset, now time.Time) string {
	remaining := reset.Sub(now)
	if remaining <= 0 {
		return "resetting now"
	}
	return "resets in " + FormatDuration(remaining)
}

// FormatPercentage renders an integer percentage
func FormatPercentage(p int) string {
	return fmt.Sprintf("%d%%", p)
}
