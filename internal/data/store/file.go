package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-claude-usage/internal/util"
)

const notifyFile = ".notify"

// FileStore keeps one file per key in a shared directory
type FileStore struct {
	dir string

	mu     sync.RWMutex
	closed bool
	done   chan struct{} // closed by Close to end active watches
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store path is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, done: make(chan struct{})}, nil
}

// Dir returns the backing directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) keyPath(key string) (string, error) {
	if key == "" || key == notifyFile || filepath.Base(key) != key || key[0] == '.' {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads a key
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	path, err := s.keyPath(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Put writes a key atomically
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, value)
}

// Delete removes a key
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Notify rewrites the sentinel file that watchers listen for
func (s *FileStore) Notify(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return writeFileAtomic(filepath.Join(s.dir, notifyFile), []byte(stamp))
}

// Watch signals whenever the sentinel is rewritten
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	out := make(chan struct{}, 1)
	go s.processEvents(ctx, watcher, out)
	return out, nil
}

func (s *FileStore) processEvents(ctx context.Context, watcher *fsnotify.Watcher, out chan struct{}) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.done:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// atomic writes land as Create (rename) on most platforms
			if filepath.Base(event.Name) == notifyFile && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				signal(out)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Store watch error", util.F("dir", s.dir), util.F("error", err))
		}
	}
}

// Close marks the store closed and ends active watches
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
