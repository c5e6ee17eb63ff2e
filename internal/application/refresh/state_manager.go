package refresh

import (
	"sync"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// StateManager holds the producer's view of the latest cycle in a
// thread-safe manner
type StateManager struct {
	mu sync.RWMutex

	snapshot  *model.UsageSnapshot
	lastError string

	isLoading   bool
	lastAttempt time.Time
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{}
}

// Snapshot returns the last successfully fetched snapshot, or nil
func (sm *StateManager) Snapshot() *model.UsageSnapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.snapshot
}

// LastError returns the message of the last failed cycle, cleared on success
func (sm *StateManager) LastError() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastError
}

// IsLoading reports whether a fetch is in flight
func (sm *StateManager) IsLoading() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isLoading
}

// LastAttempt returns when the last cycle started
func (sm *StateManager) LastAttempt() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastAttempt
}

func (sm *StateManager) begin(now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isLoading = true
	sm.lastAttempt = now
}

func (sm *StateManager) succeed(snapshot *model.UsageSnapshot) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isLoading = false
	sm.snapshot = snapshot
	sm.lastError = ""
}

// fail keeps the previous snapshot so readers still have data to show
func (sm *StateManager) fail(message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isLoading = false
	sm.lastError = message
}
