package resettime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// partialDate is what a matcher extracts from a fragment. Only the
// clock time is mandatory; weekday and month/day are mutually exclusive.
type partialDate struct {
	hour   int // 0-23
	minute int

	weekday    time.Weekday
	hasWeekday bool

	month  time.Month
	day    int
	hasDay bool
}

// matcher recognises one fragment template
type matcher struct {
	name  string
	match func(fragment string) (partialDate, bool)
}

const (
	clockGlued  = `(\d{1,2}):(\d{2})(am|pm)`
	clockSpaced = `(\d{1,2}):(\d{2})\s+(am|pm)`
	weekdayAbbr = `(sun|mon|tue|wed|thu|fri|sat)`
	weekdayFull = `(sunday|monday|tuesday|wednesday|thursday|friday|saturday)`
	monthAbbr   = `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`
)

var (
	timeGluedPattern      = anchored(clockGlued)
	timeSpacedPattern     = anchored(clockSpaced)
	weekdayAbbrPattern    = anchored(weekdayAbbr + `\s+` + clockSpaced)
	weekdayFullPattern    = anchored(weekdayFull + `\s+` + clockSpaced)
	monthDayGluedPattern  = anchored(monthAbbr + `\s+(\d{1,2})\s+at\s+` + clockGlued)
	monthDaySpacedPattern = anchored(monthAbbr + `\s+(\d{1,2})\s+at\s+` + clockSpaced)
)

// matchers in priority order; the first full match wins
var matchers = []matcher{
	{name: "time_glued", match: matchTime(timeGluedPattern)},
	{name: "time_spaced", match: matchTime(timeSpacedPattern)},
	{name: "weekday_abbr_time", match: matchWeekday(weekdayAbbrPattern)},
	{name: "weekday_full_time", match: matchWeekday(weekdayFullPattern)},
	{name: "month_day_glued", match: matchMonthDay(monthDayGluedPattern)},
	{name: "month_day_spaced", match: matchMonthDay(monthDaySpacedPattern)},
}

func anchored(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + expr + `$`)
}

func matchTime(re *regexp.Regexp) func(string) (partialDate, bool) {
	return func(fragment string) (partialDate, bool) {
		m := re.FindStringSubmatch(fragment)
		if m == nil {
			return partialDate{}, false
		}
		return clock(m[1], m[2], m[3])
	}
}

func matchWeekday(re *regexp.Regexp) func(string) (partialDate, bool) {
	return func(fragment string) (partialDate, bool) {
		m := re.FindStringSubmatch(fragment)
		if m == nil {
			return partialDate{}, false
		}
		wd, ok := weekdays[strings.ToLower(m[1])[:3]]
		if !ok {
			return partialDate{}, false
		}
		pd, ok := clock(m[2], m[3], m[4])
		if !ok {
			return partialDate{}, false
		}
		pd.weekday = wd
		pd.hasWeekday = true
		return pd, true
	}
}

func matchMonthDay(re *regexp.Regexp) func(string) (partialDate, bool) {
	return func(fragment string) (partialDate, bool) {
		m := re.FindStringSubmatch(fragment)
		if m == nil {
			return partialDate{}, false
		}
		month, ok := months[strings.ToLower(m[1])]
		if !ok {
			return partialDate{}, false
		}
		day, err := strconv.Atoi(m[2])
		if err != nil || day < 1 || day > 31 {
			return partialDate{}, false
		}
		pd, ok := clock(m[3], m[4], m[5])
		if !ok {
			return partialDate{}, false
		}
		pd.month = month
		pd.day = day
		pd.hasDay = true
		return pd, true
	}
}

// clock converts a 12-hour clock reading into 24-hour fields
func clock(hourStr, minuteStr, meridiem string) (partialDate, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return partialDate{}, false
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute > 59 {
		return partialDate{}, false
	}
	hour %= 12
	if strings.EqualFold(meridiem, "pm") {
		hour += 12
	}
	return partialDate{hour: hour, minute: minute}, true
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}
