package layout

import (
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// View is everything a surface needs to render one frame
type View struct {
	Snapshot    *model.UsageSnapshot
	Preferences model.Preferences
	LastError   string
	Loading     bool

	// IsPlaceholder marks sample data shown before the first fetch
	IsPlaceholder bool

	Now   time.Time
	Width int // 0 means terminal width
}

// WidgetView builds the view for a widget frame, substituting sample data
// when nothing has been stored yet
func WidgetView(snapshot *model.UsageSnapshot, prefs model.Preferences, now time.Time) View {
	v := View{Snapshot: snapshot, Preferences: prefs, Now: now}
	if snapshot == nil {
		v.Snapshot = model.Placeholder(now)
		v.IsPlaceholder = true
	}
	return v
}
