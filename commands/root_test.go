package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// executeCommand runs the root command with args and returns everything written to stdout
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig creates a config file pointing the store and the log into dir
func writeConfig(t *testing.T, dir, binary string) string {
	t.Helper()
	content := "cli:\n" +
		"  binary_path: " + binary + "\n" +
		"  timeout: 5s\n" +
		"store:\n" +
		"  type: file\n" +
		"  path: " + filepath.Join(dir, "shared") + "\n" +
		"logging:\n" +
		"  file: " + filepath.Join(dir, "logs", "app.log") + "\n" +
		"timezone: UTC\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected func(string) string
	}{
		{
			name:  "home directory expansion",
			input: "~/test/path",
			expected: func(home string) string {
				return filepath.Join(home, "test/path")
			},
		},
		{
			name:  "absolute path unchanged",
			input: "/absolute/path",
			expected: func(home string) string {
				return "/absolute/path"
			},
		},
		{
			name:  "relative path converted to absolute",
			input: "relative/path",
			expected: func(home string) string {
				abs, _ := filepath.Abs("relative/path")
				return abs
			},
		},
	}

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			expected := tt.expected(home)
			assert.Equal(t, expected, result)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test", "nested", "dir")

	err := ensureDir(testDir)
	assert.NoError(t, err)

	info, err := os.Stat(testDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Calling again on an existing directory is fine
	assert.NoError(t, ensureDir(testDir))
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"daemon", "show", "widget", "prefs", "parse"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	assert.True(t, parseCmd.Hidden)
}

const usageOutput = `Current session: 30% used (resets 4:59pm)
Current week (all): 53% used (resets Mon 1:00 PM)
Current week (Sonnet): 23% used`

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")

	input := filepath.Join(dir, "usage.txt")
	require.NoError(t, os.WriteFile(input, []byte(usageOutput), 0644))

	out, err := executeCommand(t, "", "--config", cfg, "--output", "json", "parse", input)
	require.NoError(t, err)
	assert.Contains(t, out, `"percentage": 30`)
	assert.Contains(t, out, `"resetTimeString": "Mon 1:00 PM"`)

	out, err = executeCommand(t, usageOutput, "--config", cfg, "--output", "text", "parse", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan usage limits")
	assert.Contains(t, out, "Sonnet only")

	_, err = executeCommand(t, "nothing useful", "--config", cfg, "--output", "text", "parse")
	assert.ErrorContains(t, err, "session")
}

func TestParseCommandRejectsUnknownOutput(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "")
	_, err := executeCommand(t, usageOutput, "--config", cfg, "--output", "csv", "parse")
	assert.ErrorContains(t, err, "unsupported output format")
	outputFormat = defaultOutput
}
