package driver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultModeTimeout bounds link and mode change commands.
	DefaultModeTimeout = 10 * time.Second
	// DefaultChannelTimeout bounds a single channel switch.
	DefaultChannelTimeout = 5 * time.Second
)

// ErrCommandTimeout matches any CommandError whose command hit its deadline.
var ErrCommandTimeout = errors.New("command timed out")

// CommandRunner executes a system command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CommandError describes a failed privileged command.
type CommandError struct {
	Op       string
	Command  string
	Output   string
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %q failed", e.Op, e.Command)
	if e.TimedOut {
		msg += " (timed out)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCommandTimeout) true for timed out commands.
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandTimeout && e.TimedOut
}

// runWithTimeout runs one command under its own deadline and wraps failures.
func runWithTimeout(ctx context.Context, runner CommandRunner, op string, timeout time.Duration, name string, args ...string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner.Run(cctx, name, args...)
	if err != nil {
		return out, &CommandError{
			Op:       op,
			Command:  strings.TrimSpace(name + " " + strings.Join(args, " ")),
			Output:   strings.TrimSpace(string(out)),
			TimedOut: errors.Is(cctx.Err(), context.DeadlineExceeded),
			Err:      err,
		}
	}
	return out, nil
}
