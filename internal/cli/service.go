// Package cli locates and runs the claude command-line tool and turns its
// /usage output into a snapshot.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// UsageParser converts raw CLI text into a snapshot
type UsageParser interface {
	Parse(raw string, now time.Time) (*model.UsageSnapshot, error)
}

// BinaryLocator finds the CLI executable
type BinaryLocator interface {
	Find() (string, error)
}

// CommandRunner executes a process with a deadline
type CommandRunner interface {
	Run(ctx context.Context, binary string, args []string, timeout time.Duration) (string, error)
}

// ServiceConfig holds the invocation settings
type ServiceConfig struct {
	Args    []string
	Timeout time.Duration
	Now     func() time.Time
}

// Service fetches usage by running the CLI
type Service struct {
	locator BinaryLocator
	runner  CommandRunner
	parser  UsageParser
	args    []string
	timeout time.Duration
	now     func() time.Time
}

// NewService wires the collaborators together, filling defaults
func NewService(locator BinaryLocator, runner CommandRunner, parser UsageParser, cfg ServiceConfig) *Service {
	args := cfg.Args
	if len(args) == 0 {
		args = []string{"/usage"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		locator: locator,
		runner:  runner,
		parser:  parser,
		args:    args,
		timeout: timeout,
		now:     now,
	}
}

// Available reports whether the CLI binary can be located
func (s *Service) Available() bool {
	_, err := s.locator.Find()
	return err == nil
}

// FetchRaw runs the CLI and returns its unparsed output
func (s *Service) FetchRaw(ctx context.Context) (string, error) {
	binary, err := s.locator.Find()
	if err != nil {
		return "", err
	}
	output, err := s.runner.Run(ctx, binary, s.args, s.timeout)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", binary, err)
	}
	return output, nil
}

// FetchUsage runs the CLI and parses its output. Parse failures are
// returned as *ParsingFailedError.
func (s *Service) FetchUsage(ctx context.Context) (*model.UsageSnapshot, error) {
	output, err := s.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.parser.Parse(output, s.now())
	if err != nil {
		return nil, &ParsingFailedError{Err: err}
	}
	return snapshot, nil
}
