package util

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string, format LogFormat) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger, _ := NewLogger(LoggerConfig{Level: level})
	logger.AddOutput(NewConsoleOutput(buf, format))
	return logger, buf
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("warn", FormatText)

	logger.Info("hidden")
	logger.Debugf("hidden %d", 1)
	logger.Warn("shown")
	logger.Errorf("failed: %s", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown")
	assert.Contains(t, out, "[ERROR] failed: boom")
}

func TestLoggerTextFieldsAreSorted(t *testing.T) {
	logger, buf := newBufferLogger("debug", FormatText)

	logger.Info("cycle finished", F("zeta", 1), F("alpha", "x"), F("err", errors.New("bad")))
	assert.Contains(t, buf.String(), "cycle finished alpha=x err=bad zeta=1")
}

func TestLoggerJSONFormat(t *testing.T) {
	logger, buf := newBufferLogger("info", FormatJSON)

	logger.With(F("component", "refresh")).Info("stored", F("percentage", 30))

	var entry map[string]interface{}
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "stored", entry["message"])
	fields := entry["fields"].(map[string]interface{})
	assert.Equal(t, "refresh", fields["component"])
	assert.EqualValues(t, 30, fields["percentage"])
}

func TestLoggerWithContext(t *testing.T) {
	logger, buf := newBufferLogger("info", FormatText)

	ctx := context.WithValue(context.Background(), CycleIDKey, "c-7")
	logger.WithContext(ctx).Info("fetching")
	assert.Contains(t, buf.String(), "cycle_id=c-7")
}

func TestFileOutputCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger(LoggerConfig{Level: "info", File: path})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] hello")
}

func TestGlobalLoggerHelpers(t *testing.T) {
	defer CloseLogger()

	// no logger installed: helpers are no-ops
	CloseLogger()
	LogInfo("dropped")

	logger, buf := newBufferLogger("debug", FormatText)
	SetLogger(logger)
	LogDebugf("value=%d", 3)
	LogWarn("careful", F("k", "v"))
	LogInfof("stopped after %s", "2m")
	LogWarnf("retrying in %s", "2s")
	LogErrorf("server on %s stopped: %v", ":9090", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] value=3")
	assert.Contains(t, out, "[WARN] careful k=v")
	assert.Contains(t, out, "[INFO] stopped after 2m")
	assert.Contains(t, out, "[WARN] retrying in 2s")
	assert.Contains(t, out, "[ERROR] server on :9090 stopped: boom")
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseLogFormat("JSON"))
	assert.Equal(t, FormatText, ParseLogFormat("text"))
	assert.Equal(t, FormatText, ParseLogFormat("bogus"))
}
