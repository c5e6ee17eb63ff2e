package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRefreshesImmediatelyAndOnTicks(t *testing.T) {
	fetcher := &fakeFetcher{snapshot: sampleSnapshot()}
	shared := newFakeShared()
	s := NewScheduler(NewRefresher(fetcher, shared), shared, nil)
	s.intervalCap = 30 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return fetcher.calls.Load() >= 3 }, 3*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestSchedulerUsesPreferredInterval(t *testing.T) {
	shared := newFakeShared()
	s := NewScheduler(NewRefresher(&fakeFetcher{}, shared), shared, nil)

	assert.Equal(t, 15*time.Minute, s.interval(context.Background()))

	shared.mu.Lock()
	shared.prefs.RefreshIntervalMinutes = 1
	shared.mu.Unlock()
	assert.Equal(t, model.MinRefreshIntervalMinutes*time.Minute, s.interval(context.Background()))
}

func TestSchedulerSlowFetchDoesNotStack(t *testing.T) {
	fetcher := &fakeFetcher{
		snapshot: sampleSnapshot(),
		block:    make(chan struct{}),
		started:  make(chan struct{}, 1),
	}
	shared := newFakeShared()
	obs := &recordingObserver{}
	s := NewScheduler(NewRefresher(fetcher, shared, WithObserver(obs)), shared, nil)
	s.intervalCap = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	<-fetcher.started
	// ticks keep firing while the first fetch is blocked
	assert.Eventually(t, func() bool {
		obs.mu.Lock()
		defer obs.mu.Unlock()
		return obs.skipped >= 3
	}, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	close(fetcher.block)
}

func TestSchedulerRereadsPreferencesOnChange(t *testing.T) {
	fetcher := &fakeFetcher{snapshot: sampleSnapshot()}
	shared := newFakeShared()
	changes := make(chan struct{}, 1)
	s := NewScheduler(NewRefresher(fetcher, shared), shared, changes)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	shared.mu.Lock()
	shared.prefs.RefreshIntervalMinutes = 60
	shared.mu.Unlock()
	changes <- struct{}{}

	// a closed change feed is tolerated
	close(changes)
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestSchedulerRunWaitsForCycleInProgress(t *testing.T) {
	fetcher := &fakeFetcher{
		snapshot:     sampleSnapshot(),
		block:        make(chan struct{}),
		started:      make(chan struct{}, 1),
		ignoreCancel: true,
	}
	shared := newFakeShared()
	s := NewScheduler(NewRefresher(fetcher, shared), shared, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	<-fetcher.started
	cancel()

	select {
	case <-errCh:
		t.Fatal("Run returned while a cycle was still writing")
	case <-time.After(50 * time.Millisecond):
	}

	close(fetcher.block)
	assert.ErrorIs(t, <-errCh, context.Canceled)

	usage, _, notifies := shared.snapshot()
	assert.NotNil(t, usage)
	assert.Equal(t, 1, notifies)
}
