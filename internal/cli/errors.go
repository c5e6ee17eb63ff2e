package cli

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no claude executable could be located
	ErrNotFound = errors.New("claude CLI not found")
	// ErrTimeout means the process outlived its deadline and was killed
	ErrTimeout = errors.New("claude CLI command timed out")
)

// ExecError reports a process that failed to start or exited non-zero
type ExecError struct {
	ExitCode int    // -1 when the process never started
	Stderr   string // captured stderr, may be empty
	Err      error  // start or wait error
}

func (e *ExecError) Error() string {
	return "execution failed: " + e.Detail()
}

// Detail is the message shown to users: stderr when present, otherwise
// the exit code or start error
func (e *ExecError) Detail() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.ExitCode < 0 && e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("Exit code: %d", e.ExitCode)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ParsingFailedError wraps a parser failure so callers can tell it apart
// from process failures
type ParsingFailedError struct {
	Err error
}

func (e *ParsingFailedError) Error() string {
	return "parsing failed: " + e.Err.Error()
}

func (e *ParsingFailedError) Unwrap() error {
	return e.Err
}

// UserMessage converts a fetch error into the text stored as the last
// error for display surfaces
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var execErr *ExecError
	var parseErr *ParsingFailedError
	switch {
	case errors.Is(err, ErrNotFound):
		return "Claude CLI not found. Please ensure Claude Code is installed."
	case errors.Is(err, ErrTimeout):
		return "Claude CLI command timed out."
	case errors.As(err, &parseErr):
		return "Failed to parse usage data: " + parseErr.Err.Error()
	case errors.As(err, &execErr):
		return "Failed to execute Claude CLI: " + execErr.Detail()
	default:
		return err.Error()
	}
}
