package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/penwyp/go-claude-usage/internal/util"
)

// DefaultTimeout bounds a single CLI invocation
const DefaultTimeout = 30 * time.Second

// killGrace is how long Wait may block on inherited pipes after a kill
const killGrace = 2 * time.Second

// Runner spawns the CLI process
type Runner struct {
	extraPath []string
}

// NewRunner creates a runner that prepends extraPath to the child's PATH
func NewRunner(extraPath []string) *Runner {
	return &Runner{extraPath: extraPath}
}

// Run executes binary with args and returns its output. stdout is
// preferred; stderr is returned when stdout is empty. The process group is
// killed once timeout elapses or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = r.environ()
	cmd.WaitDelay = killGrace
	configureProcessGroup(cmd)

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return "", &ExecError{ExitCode: -1, Err: err}
	}

	err := cmd.Wait()
	util.LogDebug("claude CLI finished",
		util.F("duration", time.Since(started).String()),
		util.F("stdout_bytes", stdout.Len()),
		util.F("stderr_bytes", stderr.Len()))

	if runCtx.Err() != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", ErrTimeout
		}
		return "", ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExecError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: err}
		}
		return "", &ExecError{ExitCode: -1, Stderr: stderr.String(), Err: err}
	}

	if stdout.Len() == 0 {
		return stderr.String(), nil
	}
	return stdout.String(), nil
}

func (r *Runner) environ() []string {
	env := os.Environ()
	if len(r.extraPath) == 0 {
		return env
	}

	current := "/usr/bin:/bin"
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			current = strings.TrimPrefix(kv, "PATH=")
			continue
		}
		out = append(out, kv)
	}
	path := strings.Join(r.extraPath, string(os.PathListSeparator)) + string(os.PathListSeparator) + current
	return append(out, "PATH="+path)
}
