// Package refresh runs the fetch, parse, store and notify cycle and
// schedules it.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/penwyp/go-claude-usage/internal/cli"
	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/metrics"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// ErrInFlight is returned by Refresh when another cycle is running
var ErrInFlight = errors.New("refresh already in progress")

// Refresher performs single-flight refresh cycles
type Refresher struct {
	fetcher  UsageFetcher
	shared   SharedState
	state    *StateManager
	observer Observer
	now      func() time.Time

	refreshMutex sync.Mutex // held for the whole cycle
	cycles       atomic.Uint64
}

// Option customises a Refresher
type Option func(*Refresher)

// WithObserver reports outcomes to o
func WithObserver(o Observer) Option {
	return func(r *Refresher) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRefresher creates a refresher publishing into shared
func NewRefresher(fetcher UsageFetcher, shared SharedState, opts ...Option) *Refresher {
	r := &Refresher{
		fetcher:  fetcher,
		shared:   shared,
		state:    NewStateManager(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State exposes the in-process view of the last cycle
func (r *Refresher) State() *StateManager {
	return r.state
}

// Refresh runs one cycle unless one is already running, in which case it
// returns ErrInFlight immediately. A failed fetch is recorded as the last
// error and returned; the previously stored snapshot is left untouched.
func (r *Refresher) Refresh(ctx context.Context) (*model.UsageSnapshot, error) {
	if !r.refreshMutex.TryLock() {
		util.LogDebug("Refresh skipped, cycle already in flight")
		r.observer.RefreshSkipped()
		return nil, ErrInFlight
	}
	defer r.refreshMutex.Unlock()

	cycleID := fmt.Sprintf("c-%d", r.cycles.Add(1))
	ctx = context.WithValue(ctx, util.CycleIDKey, cycleID)
	log := r.logger(ctx)

	started := r.now()
	r.state.begin(started)
	log.Info("Fetching usage from claude CLI")

	snapshot, err := r.fetcher.FetchUsage(ctx)
	if err != nil && errors.Is(err, context.Canceled) {
		r.state.fail(r.state.LastError())
		r.observer.FetchCompleted(metrics.OutcomeCanceled, r.now().Sub(started), nil)
		log.Info("Usage fetch canceled")
		return nil, err
	}
	if err != nil {
		message := cli.UserMessage(err)
		r.state.fail(message)
		r.observer.FetchCompleted(outcomeOf(err), r.now().Sub(started), nil)
		log.Warn("Usage fetch failed", util.F("error", err))

		if saveErr := r.shared.SaveLastError(ctx, message); saveErr != nil {
			log.Error("Failed to record last error", util.F("error", saveErr))
		}
		r.shared.NotifyReaders(ctx)
		return nil, err
	}

	if err := r.shared.SaveUsage(ctx, snapshot); err != nil {
		message := "Failed to save usage data: " + err.Error()
		r.state.fail(message)
		r.observer.FetchCompleted(metrics.OutcomeStore, r.now().Sub(started), nil)
		log.Error("Failed to store usage snapshot", util.F("error", err))
		return nil, fmt.Errorf("failed to store usage snapshot: %w", err)
	}
	if err := r.shared.SaveLastError(ctx, ""); err != nil {
		log.Warn("Failed to clear last error", util.F("error", err))
	}
	r.shared.NotifyReaders(ctx)

	r.state.succeed(snapshot)
	r.observer.FetchCompleted(metrics.OutcomeSuccess, r.now().Sub(started), snapshot)
	log.Info("Usage refreshed",
		util.F("session", snapshot.Session.Percentage),
		util.F("weekly_all", snapshot.WeeklyAll.Percentage),
		util.F("weekly_sonnet", snapshot.WeeklySonnet.Percentage))

	return snapshot, nil
}

func (r *Refresher) logger(ctx context.Context) util.LoggerInterface {
	if l := util.GetLogger(); l != nil {
		return l.WithContext(ctx)
	}
	return discardLogger
}

var discardLogger util.LoggerInterface = mustDiscardLogger()

func mustDiscardLogger() *util.Logger {
	l, _ := util.NewLogger(util.LoggerConfig{})
	return l
}

func outcomeOf(err error) string {
	var execErr *cli.ExecError
	var parseErr *cli.ParsingFailedError
	switch {
	case errors.Is(err, cli.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, cli.ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case errors.As(err, &parseErr):
		return metrics.OutcomeParse
	case errors.As(err, &execErr):
		return metrics.OutcomeExecError
	default:
		return metrics.OutcomeExecError
	}
}
