package util

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCreateProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		width    int
		filled   int
	}{
		{name: "empty", progress: 0, width: 10, filled: 0},
		{name: "partial", progress: 0.3, width: 10, filled: 3},
		{name: "full", progress: 1, width: 10, filled: 10},
		{name: "over clamps", progress: 1.3, width: 10, filled: 10},
		{name: "negative clamps", progress: -0.5, width: 10, filled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := CreateProgressBar(tt.progress, tt.width)
			assert.Equal(t, tt.width, GetDisplayWidth(bar))
			assert.Equal(t, tt.filled, strings.Count(bar, barFilled))
		})
	}

	assert.Empty(t, CreateProgressBar(0.5, 0))
}

func TestColoredProgressBarWithoutColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	assert.Equal(t, CreateProgressBar(0.53, 20), ColoredProgressBar(0.53, 20, 128, 51, 204))
	assert.Equal(t, "Title", FormatHeaderTitle("Title"))
}

func TestColoredProgressBarWithColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	bar := ColoredProgressBar(0.5, 10, 56, 130, 245)
	assert.Contains(t, bar, "\x1b[38;2;56;130;245m")
	assert.Equal(t, 5, strings.Count(bar, barFilled))
	assert.Equal(t, 5, strings.Count(bar, barEmpty))
}

