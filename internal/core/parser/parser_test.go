package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

const sampleOutput = "Current session: 30% used (resets 4:59pm)\n" +
	"Current week (all): 53% used (resets Mon 1:00 PM)\n" +
	"Current week (Sonnet): 23% used"

func TestParseEndToEnd(t *testing.T) {
	snap, err := Parse(sampleOutput, referenceNow)
	require.NoError(t, err)

	assert.Equal(t, 30, snap.Session.Percentage)
	assert.Equal(t, 53, snap.WeeklyAll.Percentage)
	assert.Equal(t, 23, snap.WeeklySonnet.Percentage)
	assert.Nil(t, snap.WeeklySonnet.ResetTimeString)
	assert.Nil(t, snap.WeeklySonnet.ResetDate)
	assert.True(t, snap.LastUpdated.Equal(referenceNow))

	require.NotNil(t, snap.Session.ResetTimeString)
	assert.Equal(t, "4:59pm", *snap.Session.ResetTimeString)
	require.NotNil(t, snap.Session.ResetDate)
	assert.True(t, snap.Session.ResetDate.Equal(time.Date(2025, 1, 15, 16, 59, 0, 0, time.UTC)))

	require.NotNil(t, snap.WeeklyAll.ResetDate)
	assert.True(t, snap.WeeklyAll.ResetDate.Equal(time.Date(2025, 1, 20, 13, 0, 0, 0, time.UTC)))
}

func TestParseIsOrderIndependent(t *testing.T) {
	lines := strings.Split(sampleOutput, "\n")
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}, {2, 0, 1}}

	for _, order := range orders {
		var b strings.Builder
		b.WriteString("Usage report\n\n")
		for _, i := range order {
			b.WriteString(lines[i])
			b.WriteString("\n")
		}

		snap, err := Parse(b.String(), referenceNow)
		require.NoError(t, err, "order %v", order)
		assert.Equal(t, 30, snap.Session.Percentage)
		assert.Equal(t, 53, snap.WeeklyAll.Percentage)
		assert.Equal(t, 23, snap.WeeklySonnet.Percentage)
	}
}

func TestParseMissingField(t *testing.T) {
	lines := strings.Split(sampleOutput, "\n")
	categories := []model.Category{model.CategorySession, model.CategoryWeeklyAll, model.CategoryWeeklySonnet}

	for i, missing := range categories {
		t.Run(string(missing), func(t *testing.T) {
			var kept []string
			for j, line := range lines {
				if j != i {
					kept = append(kept, line)
				}
			}

			snap, err := Parse(strings.Join(kept, "\n"), referenceNow)
			assert.Nil(t, snap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))
			assert.False(t, errors.Is(err, ErrInvalidFormat))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, missing, perr.Field)
			assert.Equal(t, "Could not find "+string(missing)+" in CLI output", perr.Error())
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse("", referenceNow)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindMissingField, perr.Kind)
	assert.Equal(t, model.CategorySession, perr.Field)
}

func TestParseInvalidPercentage(t *testing.T) {
	input := strings.Replace(sampleOutput, "53%", "99999999999999999999999%", 1)
	_, err := Parse(input, referenceNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFormat))
	assert.Contains(t, err.Error(), "Invalid format: Could not parse percentage for weekly all")
}

func TestParseLabelWithoutPercentageIsMissing(t *testing.T) {
	input := strings.Replace(sampleOutput, "30% used", "unknown", 1)
	_, err := Parse(input, referenceNow)
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestParseUnresolvableFragmentKeepsRawText(t *testing.T) {
	input := strings.Replace(sampleOutput, "4:59pm", "garbage text", 1)
	snap, err := Parse(input, referenceNow)
	require.NoError(t, err)

	require.NotNil(t, snap.Session.ResetTimeString)
	assert.Equal(t, "garbage text", *snap.Session.ResetTimeString)
	assert.Nil(t, snap.Session.ResetDate)
	assert.Equal(t, 30, snap.Session.Percentage)
}

func TestParseRelativeFragment(t *testing.T) {
	input := strings.Replace(sampleOutput, "4:59pm", "3 hr 59 min", 1)
	snap, err := Parse(input, referenceNow)
	require.NoError(t, err)
	require.NotNil(t, snap.Session.ResetDate)
	assert.Equal(t, 14340*time.Second, snap.Session.ResetDate.Sub(referenceNow))
}

func TestParseCaseInsensitive(t *testing.T) {
	input := "CURRENT SESSION: 1% USED (RESETS 4:59PM)\n" +
		"current week (ALL): 2% used\n" +
		"Current Week (sonnet): 3% Used (Resets Jan 26 at 1:59 PM)"
	snap, err := Parse(input, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Session.Percentage)
	assert.Equal(t, 2, snap.WeeklyAll.Percentage)
	assert.Equal(t, 3, snap.WeeklySonnet.Percentage)
	require.NotNil(t, snap.WeeklySonnet.ResetDate)
	assert.True(t, snap.WeeklySonnet.ResetDate.Equal(time.Date(2025, 1, 26, 13, 59, 0, 0, time.UTC)))
}

func TestParseLabelsDoNotCrossMatch(t *testing.T) {
	// Only the weekly lines are present; the session pattern must not
	// pick up either of them.
	input := "Current week (all): 53% used\nCurrent week (Sonnet): 23% used"
	_, err := Parse(input, referenceNow)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, model.CategorySession, perr.Field)

	input = "Current session: 30% used\nCurrent week (Sonnet): 23% used"
	_, err = Parse(input, referenceNow)
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, model.CategoryWeeklyAll, perr.Field)
}

func TestParseFirstMatchWins(t *testing.T) {
	input := sampleOutput + "\nCurrent session: 99% used (resets 1:00am)"
	snap, err := Parse(input, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, 30, snap.Session.Percentage)
	assert.Equal(t, "4:59pm", snap.Session.ResetText())
}

func TestParsePercentageAboveHundredPassesThrough(t *testing.T) {
	input := strings.Replace(sampleOutput, "30%", "130%", 1)
	snap, err := Parse(input, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, 130, snap.Session.Percentage)
}

func TestParseStripsTerminalNoise(t *testing.T) {
	input := "\x1b[1mCurrent session:\x1b[0m 30% used (resets 4:59pm)\r\n" +
		"\x1b[36mCurrent week (all):\x1b[0m 53% used (resets Mon 1:00 PM)\r\n" +
		"Current week (Sonnet): 23% used\r\n"
	snap, err := Parse(input, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, 30, snap.Session.Percentage)
	assert.Equal(t, "Mon 1:00 PM", snap.WeeklyAll.ResetText())
}

func TestUsageParser(t *testing.T) {
	p := NewUsageParser()
	snap, err := p.Parse(sampleOutput, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, 23, snap.WeeklySonnet.Percentage)
}

func TestParseConcurrentUse(t *testing.T) {
	done := make(chan error, 16)
	for i := 0; i < cap(done); i++ {
		go func() {
			_, err := Parse(sampleOutput, referenceNow)
			done <- err
		}()
	}
	for i := 0; i < cap(done); i++ {
		assert.NoError(t, <-done)
	}
}
