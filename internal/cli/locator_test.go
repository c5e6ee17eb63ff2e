package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocator(explicit string, dirs []string, lookPath func(string) (string, error)) *Locator {
	return &Locator{explicit: explicit, dirs: dirs, lookPath: lookPath}
}

func notInPath(string) (string, error) {
	return "", errors.New("not in PATH")
}

func touch(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
}

func TestLocatorSearchOrder(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	touch(t, filepath.Join(second, "claude"), 0755)

	loc := newTestLocator("", []string{first, second}, notInPath)
	path, err := loc.Find()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "claude"), path)

	// a later install in an earlier directory is ignored once cached
	touch(t, filepath.Join(first, "claude"), 0755)
	path, err = loc.Find()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "claude"), path)
}

func TestLocatorSkipsNonExecutable(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "claude"), 0644)

	loc := newTestLocator("", []string{filepath.Join(root, "a")}, func(name string) (string, error) {
		assert.Equal(t, "claude", name)
		return "/from/path/claude", nil
	})
	path, err := loc.Find()
	require.NoError(t, err)
	assert.Equal(t, "/from/path/claude", path)
}

func TestLocatorNotFound(t *testing.T) {
	loc := newTestLocator("", []string{t.TempDir()}, notInPath)
	_, err := loc.Find()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, loc.Available())
	assert.Equal(t, "Claude CLI not found. Please ensure Claude Code is installed.", UserMessage(err))
}

func TestLocatorExplicitPath(t *testing.T) {
	root := t.TempDir()
	explicit := filepath.Join(root, "bin", "claude-custom")
	touch(t, explicit, 0755)

	loc := newTestLocator(explicit, nil, notInPath)
	path, err := loc.Find()
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	missing := newTestLocator(filepath.Join(root, "nope"), nil, notInPath)
	_, err = missing.Find()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchDirs(t *testing.T) {
	dirs := SearchDirs()
	require.NotEmpty(t, dirs)
	assert.Equal(t, "/opt/homebrew/bin", dirs[len(dirs)-1])
	assert.Contains(t, dirs, "/usr/local/bin")
}
