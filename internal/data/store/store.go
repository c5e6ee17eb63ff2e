// Package store provides the key/value blob store shared between the
// producer and the display processes.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Keys used by the sharing layer
const (
	KeyUsageData       = "usageData"
	KeyUserPreferences = "userPreferences"
	KeyLastFetchError  = "lastFetchError"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store is closed")

// Store is a cross-process key/value blob store. Writes are atomic per key;
// readers never observe a partially written value.
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Notify signals readers that new data is available
	Notify(ctx context.Context) error
	Close() error
}

// Watcher delivers best-effort change signals. Signals may be coalesced;
// the channel is closed when ctx ends or the store is closed.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// WatchableStore is a store that readers can subscribe to
type WatchableStore interface {
	Store
	Watcher
}

// Type names a backend
type Type string

const (
	TypeFile   Type = "file"
	TypeRedis  Type = "redis"
	TypeSQLite Type = "sqlite"
)

// Config selects and configures a backend
type Config struct {
	Type         Type
	Path         string // file backend directory
	SQLitePath   string
	PollInterval time.Duration // sqlite change polling
	Redis        RedisConfig
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Open creates the configured backend
func Open(cfg Config) (WatchableStore, error) {
	switch cfg.Type {
	case TypeFile, "":
		return NewFileStore(cfg.Path)
	case TypeRedis:
		return OpenRedis(cfg.Redis)
	case TypeSQLite:
		return OpenSQLite(cfg.SQLitePath, cfg.PollInterval)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

// signal performs a non-blocking send, coalescing pending notifications
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
