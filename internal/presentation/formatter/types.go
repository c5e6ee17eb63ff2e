package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// Report is what the one-shot commands print
type Report struct {
	Snapshot    *model.UsageSnapshot `json:"usage"`
	LastError   string               `json:"lastError,omitempty"`
	Preferences model.Preferences    `json:"preferences"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// Formatter renders reports and preferences
type Formatter interface {
	FormatUsage(w io.Writer, report Report) error
	FormatPreferences(w io.Writer, prefs model.Preferences) error
}

// NewFormatter returns the formatter for an --output value
func NewFormatter(output string) (Formatter, error) {
	switch output {
	case "", "text":
		return NewTextFormatter(0), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (expected text or json)", output)
	}
}
