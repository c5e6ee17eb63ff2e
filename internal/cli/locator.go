package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/penwyp/go-claude-usage/internal/util"
)

const binaryName = "claude"

// SearchDirs returns the directories checked before PATH, in order. They
// are also prepended to PATH for the spawned process.
func SearchDirs() []string {
	dirs := make([]string, 0, 3)
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"))
	}
	return append(dirs, "/usr/local/bin", "/opt/homebrew/bin")
}

// Locator finds the claude executable and remembers the first hit
type Locator struct {
	explicit string
	dirs     []string
	lookPath func(string) (string, error)

	mu     sync.Mutex
	cached string
}

// NewLocator creates a locator. A non-empty explicitPath bypasses the search.
func NewLocator(explicitPath string) *Locator {
	return &Locator{
		explicit: explicitPath,
		dirs:     SearchDirs(),
		lookPath: exec.LookPath,
	}
}

// Find returns the path to an executable claude binary
func (l *Locator) Find() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != "" {
		return l.cached, nil
	}

	if l.explicit != "" {
		if !isExecutable(l.explicit) {
			return "", fmt.Errorf("%w: %s is not executable", ErrNotFound, l.explicit)
		}
		l.cached = l.explicit
		return l.cached, nil
	}

	for _, dir := range l.dirs {
		candidate := filepath.Join(dir, binaryName)
		if isExecutable(candidate) {
			util.LogDebugf("Found claude CLI at %s", candidate)
			l.cached = candidate
			return l.cached, nil
		}
	}

	if path, err := l.lookPath(binaryName); err == nil && path != "" {
		util.LogDebugf("Found claude CLI in PATH at %s", path)
		l.cached = path
		return l.cached, nil
	}

	return "", ErrNotFound
}

// Available reports whether Find would succeed
func (l *Locator) Available() bool {
	_, err := l.Find()
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
