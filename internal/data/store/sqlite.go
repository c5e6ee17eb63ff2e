package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// DefaultPollInterval is how often sqlite watchers check for notifications
const DefaultPollInterval = 2 * time.Second

const seqKey = "__notify_seq"

// SQLiteStore keeps values in a single kv table. Notify bumps a sequence
// row that watchers poll.
type SQLiteStore struct {
	db           *sql.DB
	pollInterval time.Duration
	now          func() time.Time

	closeOnce sync.Once
	done      chan struct{}
}

// OpenSQLite opens or creates the database file
func OpenSQLite(path string, pollInterval time.Duration) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite store: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("sqlite store: opening DB: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	s := &SQLiteStore{db: db, pollInterval: pollInterval, now: time.Now, done: make(chan struct{})}
	if err := s.init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			seq INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite store: init schema: %w", err)
		}
	}
	return nil
}

// Get reads a key
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite store: get %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts a key
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite store: put %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite store: delete %s: %w", key, err)
	}
	return nil
}

// Notify increments the notification sequence
func (s *SQLiteStore) Notify(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, seq) VALUES (?, 1)
		 ON CONFLICT(key) DO UPDATE SET seq = seq + 1`, seqKey)
	if err != nil {
		return fmt.Errorf("sqlite store: notify: %w", err)
	}
	return nil
}

func (s *SQLiteStore) sequence(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT seq FROM meta WHERE key = ?`, seqKey).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return seq, err
}

// Watch polls the notification sequence
func (s *SQLiteStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	last, err := s.sequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: read sequence: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				seq, err := s.sequence(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					util.LogWarnf("SQLite store poll failed, retrying in %s: %v", s.pollInterval, err)
					continue
				}
				if seq != last {
					last = seq
					signal(out)
				}
			}
		}
	}()
	return out, nil
}

// Close ends active watches and closes the database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.db.Close()
	})
	return err
}
