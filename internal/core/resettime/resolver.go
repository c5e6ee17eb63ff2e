// Package resettime turns the human-readable reset clause printed by the
// Claude CLI ("4:59pm", "Mon 1:00 PM", "Jan 26 at 1:59pm", "3 hr 59 min")
// into an absolute timestamp.
//
// Resolution is best effort: fragments that match none of the known
// templates are reported as unresolved, never as an error.
package resettime

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hourPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:hr|hour)`)
	minutePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:min|minute)`)
)

// maxYearsAhead bounds the search for a year in which a month/day exists
const maxYearsAhead = 8

// Resolve converts fragment into an absolute time relative to now. The
// result is expressed in now's location. ok is false when the fragment
// could not be resolved.
func Resolve(fragment string, now time.Time) (resolved time.Time, ok bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return time.Time{}, false
	}

	for _, m := range matchers {
		if pd, matched := m.match(fragment); matched {
			return pd.resolve(now)
		}
	}

	return resolveRelative(fragment, now)
}

// Template returns the name of the absolute template that matches
// fragment, "relative" for the duration fallback, or "" when nothing
// matches. Used for diagnostics.
func Template(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	for _, m := range matchers {
		if _, matched := m.match(fragment); matched {
			return m.name
		}
	}
	if _, ok := relativeOffset(fragment); ok {
		return "relative"
	}
	return ""
}

func (pd partialDate) resolve(now time.Time) (time.Time, bool) {
	loc := now.Location()

	switch {
	case pd.hasWeekday:
		candidate := time.Date(now.Year(), now.Month(), now.Day(), pd.hour, pd.minute, 0, 0, loc)
		ahead := (int(pd.weekday) - int(now.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, ahead)
		// An exact tie with now rolls over to the following week.
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate, true

	case pd.hasDay:
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		for year := now.Year(); year <= now.Year()+maxYearsAhead; year++ {
			day := time.Date(year, pd.month, pd.day, 0, 0, 0, 0, loc)
			if day.Month() != pd.month || day.Day() != pd.day {
				// Feb 29 outside a leap year, Apr 31, ...
				continue
			}
			if day.Before(today) {
				continue
			}
			return time.Date(year, pd.month, pd.day, pd.hour, pd.minute, 0, 0, loc), true
		}
		return time.Time{}, false

	default:
		candidate := time.Date(now.Year(), now.Month(), now.Day(), pd.hour, pd.minute, 0, 0, loc)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, true
	}
}

func resolveRelative(fragment string, now time.Time) (time.Time, bool) {
	offset, ok := relativeOffset(fragment)
	if !ok {
		return time.Time{}, false
	}
	return now.Add(offset), true
}

// relativeOffset sums the hour and minute tokens found anywhere in the
// fragment. At least one token must be present, and counts too large for a
// time.Duration leave the fragment unresolved.
func relativeOffset(fragment string) (time.Duration, bool) {
	hours, hasHours := firstCount(hourPattern, fragment)
	minutes, hasMinutes := firstCount(minutePattern, fragment)
	if !hasHours && !hasMinutes {
		return 0, false
	}
	if int64(hours) > math.MaxInt64/int64(time.Hour) || int64(minutes) > math.MaxInt64/int64(time.Minute) {
		return 0, false
	}
	h := time.Duration(hours) * time.Hour
	m := time.Duration(minutes) * time.Minute
	if h > math.MaxInt64-m {
		return 0, false
	}
	return h + m, true
}

func firstCount(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
