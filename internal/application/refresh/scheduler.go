package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/penwyp/go-claude-usage/internal/util"
)

// Scheduler triggers refreshes on the interval stored in preferences.
// Each tick runs its cycle in the background, so a slow fetch never delays
// the schedule; the refresher drops ticks that overlap a running cycle.
type Scheduler struct {
	refresher *Refresher
	shared    SharedState
	changes   <-chan struct{}

	intervalCap time.Duration // caps the preferred interval when set
}

// NewScheduler creates a scheduler. changes, when non-nil, delivers store
// notifications that prompt re-reading the preferred interval.
func NewScheduler(refresher *Refresher, shared SharedState, changes <-chan struct{}) *Scheduler {
	return &Scheduler{refresher: refresher, shared: shared, changes: changes}
}

func (s *Scheduler) interval(ctx context.Context) time.Duration {
	d := s.shared.LoadPreferences(ctx).EffectiveRefreshInterval()
	if s.intervalCap > 0 && s.intervalCap < d {
		return s.intervalCap
	}
	return d
}

// Run refreshes immediately and then on every interval until ctx ends.
// It returns only after the cycle in progress, if any, has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.interval(ctx)
	util.LogInfo("Refresh scheduler started", util.F("interval", interval.String()))

	var cycles sync.WaitGroup
	defer cycles.Wait()

	done := make(chan struct{}, 1)
	trigger := func() {
		cycles.Add(1)
		go func() {
			defer cycles.Done()
			if _, err := s.refresher.Refresh(ctx); err != nil && !errors.Is(err, ErrInFlight) {
				util.LogDebug("Scheduled refresh failed", util.F("error", err))
			}
			select {
			case done <- struct{}{}:
			default:
			}
		}()
	}

	trigger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	changes := s.changes
	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Refresh scheduler stopped")
			return ctx.Err()

		case <-ticker.C:
			trigger()

		case <-done:
			// a cycle may have been preceded by a preferences change
			interval = s.reset(ctx, ticker, interval)

		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			interval = s.reset(ctx, ticker, interval)
		}
	}
}

func (s *Scheduler) reset(ctx context.Context, ticker *time.Ticker, current time.Duration) time.Duration {
	next := s.interval(ctx)
	if next != current {
		util.LogInfo("Refresh interval changed",
			util.F("from", current.String()), util.F("to", next.String()))
		ticker.Reset(next)
	}
	return next
}
