package refresh

import (
	"context"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// UsageFetcher runs the CLI and parses its output
type UsageFetcher interface {
	FetchUsage(ctx context.Context) (*model.UsageSnapshot, error)
}

// SharedState is where the cycle publishes its results
type SharedState interface {
	SaveUsage(ctx context.Context, snapshot *model.UsageSnapshot) error
	SaveLastError(ctx context.Context, message string) error
	LoadPreferences(ctx context.Context) model.Preferences
	NotifyReaders(ctx context.Context)
}

// Observer receives cycle outcomes, e.g. for metrics
type Observer interface {
	FetchCompleted(outcome string, duration time.Duration, snapshot *model.UsageSnapshot)
	RefreshSkipped()
}

type nopObserver struct{}

func (nopObserver) FetchCompleted(string, time.Duration, *model.UsageSnapshot) {}
func (nopObserver) RefreshSkipped() {}
