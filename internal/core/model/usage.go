package model

import (
	"time"
)

// Category identifies one of the tracked usage dimensions
type Category string

const (
	CategorySession      Category = "session"
	CategoryWeeklyAll    Category = "weekly all"
	CategoryWeeklySonnet Category = "weekly Sonnet"
)

// Categories lists every category in display order
var Categories = []Category{CategorySession, CategoryWeeklyAll, CategoryWeeklySonnet}

// Title returns the human-readable row title for the category
func (c Category) Title() string {
	switch c {
	case CategorySession:
		return "Current session"
	case CategoryWeeklyAll:
		return "Current week (all models)"
	case CategoryWeeklySonnet:
		return "Current week (Sonnet only)"
	default:
		return string(c)
	}
}

// UsageMetric is a single measured quantity with its optional reset time
type UsageMetric struct {
	// Percentage of the limit consumed. Values above 100 are kept as reported.
	Percentage int `json:"percentage"`

	// ResetTimeString is the raw text of the "(resets ...)" clause, nil when absent
	ResetTimeString *string `json:"resetTimeString,omitempty"`

	// ResetDate is the resolved absolute reset time, nil when it could not be resolved
	ResetDate *time.Time `json:"resetDate,omitempty"`
}

// NewUsageMetric builds a metric, leaving empty optionals absent
func NewUsageMetric(percentage int, resetTimeString string, resetDate *time.Time) UsageMetric {
	m := UsageMetric{Percentage: percentage, ResetDate: resetDate}
	if resetTimeString != "" {
		s := resetTimeString
		m.ResetTimeString = &s
	}
	return m
}

// Progress returns the percentage as a fraction, used for rendering only
func (m UsageMetric) Progress() float64 {
	return float64(m.Percentage) / 100.0
}

// ResetText returns the raw reset fragment or an empty string
func (m UsageMetric) ResetText() string {
	if m.ResetTimeString == nil {
		return ""
	}
	return *m.ResetTimeString
}

// Equal reports whether two metrics carry the same values. Reset dates
// are compared as instants.
func (m UsageMetric) Equal(other UsageMetric) bool {
	if m.Percentage != other.Percentage {
		return false
	}
	if (m.ResetTimeString == nil) != (other.ResetTimeString == nil) {
		return false
	}
	if m.ResetTimeString != nil && *m.ResetTimeString != *other.ResetTimeString {
		return false
	}
	if (m.ResetDate == nil) != (other.ResetDate == nil) {
		return false
	}
	return m.ResetDate == nil || m.ResetDate.Equal(*other.ResetDate)
}

// UsageSnapshot is the complete, immutable result of one fetch cycle
type UsageSnapshot struct {
	Session      UsageMetric `json:"session"`
	WeeklyAll    UsageMetric `json:"weeklyAll"`
	WeeklySonnet UsageMetric `json:"weeklySonnet"`

	// LastUpdated is when the raw CLI output was captured
	LastUpdated time.Time `json:"lastUpdated"`
}

// Metric returns the metric for a category
func (s *UsageSnapshot) Metric(c Category) UsageMetric {
	switch c {
	case CategoryWeeklyAll:
		return s.WeeklyAll
	case CategoryWeeklySonnet:
		return s.WeeklySonnet
	default:
		return s.Session
	}
}

// Equal compares two snapshots field by field
func (s *UsageSnapshot) Equal(other *UsageSnapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Session.Equal(other.Session) &&
		s.WeeklyAll.Equal(other.WeeklyAll) &&
		s.WeeklySonnet.Equal(other.WeeklySonnet) &&
		s.LastUpdated.Equal(other.LastUpdated)
}

// Placeholder returns sample data shown before the first successful fetch
func Placeholder(now time.Time) *UsageSnapshot {
	return &UsageSnapshot{
		Session:      NewUsageMetric(30, "3 hr 59 min", nil),
		WeeklyAll:    NewUsageMetric(53, "Mon 1:00 PM", nil),
		WeeklySonnet: NewUsageMetric(23, "Tue 5:00 PM", nil),
		LastUpdated:  now,
	}
}
