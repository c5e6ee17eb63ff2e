// Package parser extracts the session and weekly usage metrics from the
// text printed by `claude /usage`.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/core/resettime"
)

// metricPattern matches one category line: label, mandatory percentage,
// optional "(resets <fragment>)" clause
type metricPattern struct {
	category model.Category
	re       *regexp.Regexp
}

const resetClause = `(?:\s*\(resets\s+(.+?)\))?`

var metricPatterns = []metricPattern{
	{
		category: model.CategorySession,
		re:       regexp.MustCompile(`(?i)Current session:\s*(\d+)%\s*used` + resetClause),
	},
	{
		category: model.CategoryWeeklyAll,
		re:       regexp.MustCompile(`(?i)Current week \(all\):\s*(\d+)%\s*used` + resetClause),
	},
	{
		category: model.CategoryWeeklySonnet,
		re:       regexp.MustCompile(`(?i)Current week \(Sonnet\):\s*(\d+)%\s*used` + resetClause),
	},
}

// UsageParser adapts Parse to an injectable value
type UsageParser struct{}

// NewUsageParser creates a new usage text parser
func NewUsageParser() *UsageParser {
	return &UsageParser{}
}

// Parse implements the parsing contract used by the CLI service
func (p *UsageParser) Parse(raw string, now time.Time) (*model.UsageSnapshot, error) {
	return Parse(raw, now)
}

// ansiPattern matches CSI escape sequences emitted by coloured terminals
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// Parse builds a snapshot from raw CLI output. All three categories must
// be present; a reset fragment that cannot be resolved only leaves the
// metric's ResetDate empty.
func Parse(raw string, now time.Time) (*model.UsageSnapshot, error) {
	text := Clean(raw)

	metrics := make(map[model.Category]model.UsageMetric, len(metricPatterns))
	for _, p := range metricPatterns {
		metric, err := parseMetric(p, text, now)
		if err != nil {
			return nil, err
		}
		metrics[p.category] = metric
	}

	return &model.UsageSnapshot{
		Session:      metrics[model.CategorySession],
		WeeklyAll:    metrics[model.CategoryWeeklyAll],
		WeeklySonnet: metrics[model.CategoryWeeklySonnet],
		LastUpdated:  now,
	}, nil
}

// Clean strips terminal escape sequences and carriage returns
func Clean(raw string) string {
	text := ansiPattern.ReplaceAllString(raw, "")
	return strings.ReplaceAll(text, "\r", "")
}

func parseMetric(p metricPattern, text string, now time.Time) (model.UsageMetric, error) {
	match := p.re.FindStringSubmatch(text)
	if match == nil {
		return model.UsageMetric{}, missingField(p.category)
	}

	percentage, err := strconv.Atoi(match[1])
	if err != nil {
		return model.UsageMetric{}, invalidFormat(p.category,
			fmt.Sprintf("Could not parse percentage for %s", p.category))
	}

	fragment := match[2]
	if fragment == "" {
		return model.NewUsageMetric(percentage, "", nil), nil
	}

	var resetDate *time.Time
	if resolved, ok := resettime.Resolve(fragment, now); ok {
		resetDate = &resolved
	}
	return model.NewUsageMetric(percentage, fragment, resetDate), nil
}
