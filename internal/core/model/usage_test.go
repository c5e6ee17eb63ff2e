package model

import (
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Current session", CategorySession.Title())
	assert.Equal(t, "Current week (all models)", CategoryWeeklyAll.Title())
	assert.Equal(t, "Current week (Sonnet only)", CategoryWeeklySonnet.Title())
	assert.Equal(t, "other", Category("other").Title())
}

func TestUsageMetricProgress(t *testing.T) {
	assert.InDelta(t, 0.3, NewUsageMetric(30, "", nil).Progress(), 1e-9)
	assert.InDelta(t, 0.0, NewUsageMetric(0, "", nil).Progress(), 1e-9)
	assert.InDelta(t, 1.2, NewUsageMetric(120, "", nil).Progress(), 1e-9)
}

func TestNewUsageMetricLeavesEmptyFragmentAbsent(t *testing.T) {
	m := NewUsageMetric(10, "", nil)
	assert.Nil(t, m.ResetTimeString)
	assert.Nil(t, m.ResetDate)
	assert.Equal(t, "", m.ResetText())

	m = NewUsageMetric(10, "4:59pm", nil)
	require.NotNil(t, m.ResetTimeString)
	assert.Equal(t, "4:59pm", m.ResetText())
}

func TestSnapshotRoundTrip(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	reset := time.Date(2025, 1, 15, 16, 59, 0, 0, loc)
	weekly := time.Date(2025, 1, 20, 13, 0, 0, 0, loc)

	original := &UsageSnapshot{
		Session:      NewUsageMetric(30, "4:59pm", &reset),
		WeeklyAll:    NewUsageMetric(53, "Mon 1:00 PM", &weekly),
		WeeklySonnet: NewUsageMetric(23, "", nil),
		LastUpdated:  time.Date(2025, 1, 15, 10, 0, 0, 0, loc),
	}

	data, err := sonic.Marshal(original)
	require.NoError(t, err)

	var decoded UsageSnapshot
	require.NoError(t, sonic.Unmarshal(data, &decoded))

	assert.True(t, original.Equal(&decoded), "decoded snapshot differs: %s", string(data))
	assert.Nil(t, decoded.WeeklySonnet.ResetTimeString)
	assert.Nil(t, decoded.WeeklySonnet.ResetDate)
}

func TestSnapshotFieldNames(t *testing.T) {
	snap := &UsageSnapshot{
		Session:      NewUsageMetric(1, "3 hr", nil),
		WeeklyAll:    NewUsageMetric(2, "", nil),
		WeeklySonnet: NewUsageMetric(3, "", nil),
		LastUpdated:  time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	data, err := sonic.Marshal(snap)
	require.NoError(t, err)
	text := string(data)

	for _, field := range []string{`"session"`, `"weeklyAll"`, `"weeklySonnet"`, `"lastUpdated"`, `"percentage"`, `"resetTimeString"`} {
		assert.True(t, strings.Contains(text, field), "missing %s in %s", field, text)
	}
	assert.False(t, strings.Contains(text, `"resetDate"`), "absent reset date must be omitted")
	assert.Contains(t, text, "2025-01-15T10:00:00Z")
}

func TestSnapshotDecodesExternalDocument(t *testing.T) {
	doc := `{
		"session": {"percentage": 30, "resetTimeString": "4:59pm", "resetDate": "2025-01-15T16:59:00Z"},
		"weeklyAll": {"percentage": 53},
		"weeklySonnet": {"percentage": 23},
		"lastUpdated": "2025-01-15T10:00:00+01:00"
	}`
	var snap UsageSnapshot
	require.NoError(t, sonic.UnmarshalString(doc, &snap))

	assert.Equal(t, 30, snap.Session.Percentage)
	require.NotNil(t, snap.Session.ResetDate)
	assert.True(t, snap.Session.ResetDate.Equal(time.Date(2025, 1, 15, 16, 59, 0, 0, time.UTC)))
	assert.Nil(t, snap.WeeklyAll.ResetTimeString)
	assert.True(t, snap.LastUpdated.Equal(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)))
}

func TestSnapshotEqual(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	a := Placeholder(now)
	b := Placeholder(now.In(time.FixedZone("X", 3600)))
	assert.True(t, a.Equal(b))

	c := Placeholder(now)
	c.WeeklyAll.Percentage = 54
	assert.False(t, a.Equal(c))

	var nilSnap *UsageSnapshot
	assert.False(t, a.Equal(nilSnap))
	assert.True(t, nilSnap.Equal(nil))
}

func TestSnapshotMetric(t *testing.T) {
	snap := Placeholder(time.Now())
	assert.Equal(t, 30, snap.Metric(CategorySession).Percentage)
	assert.Equal(t, 53, snap.Metric(CategoryWeeklyAll).Percentage)
	assert.Equal(t, 23, snap.Metric(CategoryWeeklySonnet).Percentage)
}
