// Package sharing stores typed usage data, preferences and the last fetch
// error in the shared store.
package sharing

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/data/store"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// Service is the typed view of the shared store
type Service struct {
	store store.Store
}

// NewService wraps a store
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// SaveUsage persists a snapshot
func (s *Service) SaveUsage(ctx context.Context, snapshot *model.UsageSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("nil usage snapshot")
	}
	data, err := sonic.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode usage data: %w", err)
	}
	if err := s.store.Put(ctx, store.KeyUsageData, data); err != nil {
		return fmt.Errorf("failed to save usage data: %w", err)
	}
	return nil
}

// LoadUsage returns the stored snapshot, or nil when none is stored or it
// cannot be decoded
func (s *Service) LoadUsage(ctx context.Context) *model.UsageSnapshot {
	data, ok, err := s.store.Get(ctx, store.KeyUsageData)
	if err != nil {
		util.LogWarn("Failed to read usage data", util.F("error", err))
		return nil
	}
	if !ok {
		return nil
	}

	var snapshot model.UsageSnapshot
	if err := sonic.Unmarshal(data, &snapshot); err != nil {
		util.LogWarn("Discarding undecodable usage data", util.F("error", err))
		return nil
	}
	return &snapshot
}

// SavePreferences validates and persists preferences
func (s *Service) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	data, err := sonic.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.store.Put(ctx, store.KeyUserPreferences, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// LoadPreferences returns stored preferences, or the defaults when none
// are stored or they cannot be decoded
func (s *Service) LoadPreferences(ctx context.Context) model.Preferences {
	data, ok, err := s.store.Get(ctx, store.KeyUserPreferences)
	if err != nil {
		util.LogWarn("Failed to read preferences", util.F("error", err))
		return model.DefaultPreferences()
	}
	if !ok {
		return model.DefaultPreferences()
	}

	prefs := model.DefaultPreferences()
	if err := sonic.Unmarshal(data, &prefs); err != nil {
		util.LogWarn("Discarding undecodable preferences", util.F("error", err))
		return model.DefaultPreferences()
	}
	return prefs
}

// SaveLastError records the last fetch failure. An empty message clears it.
func (s *Service) SaveLastError(ctx context.Context, message string) error {
	if message == "" {
		if err := s.store.Delete(ctx, store.KeyLastFetchError); err != nil {
			return fmt.Errorf("failed to clear last error: %w", err)
		}
		return nil
	}
	if err := s.store.Put(ctx, store.KeyLastFetchError, []byte(message)); err != nil {
		return fmt.Errorf("failed to save last error: %w", err)
	}
	return nil
}

// LoadLastError returns the last fetch failure message, or ""
func (s *Service) LoadLastError(ctx context.Context) string {
	data, ok, err := s.store.Get(ctx, store.KeyLastFetchError)
	if err != nil {
		util.LogWarn("Failed to read last error", util.F("error", err))
		return ""
	}
	if !ok {
		return ""
	}
	return string(data)
}

// NotifyReaders tells display surfaces to reload. Failures are only logged.
func (s *Service) NotifyReaders(ctx context.Context) {
	if err := s.store.Notify(ctx); err != nil {
		util.LogWarn("Failed to notify readers", util.F("error", err))
	}
}
