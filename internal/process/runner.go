package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/smazurov/alsavolume/internal/logging"
)

// DefaultTimeout bounds a single invocation when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// ErrCommandNotFound is wrapped into Result.Err when the binary cannot be resolved.
var ErrCommandNotFound = errors.New("command not found")

// Runner executes an external command and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// Result is the outcome of one invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Failure  Failure
	Err      error // launch, timeout or cancellation detail; nil for FailureExit
	Duration time.Duration
}

// OK reports whether the command ran and exited with status 0.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

// ErrorText returns the most useful human-readable failure description.
func (r Result) ErrorText() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Failure == FailureExit {
		return fmt.Sprintf("exit status %d", r.ExitCode)
	}
	return ""
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration
	logger  logging.Logger
	// waitDelay bounds pipe draining after the process is killed.
	waitDelay time.Duration
}

// NewExecRunner creates a runner with the given per-invocation timeout.
// A zero timeout selects DefaultTimeout.
func NewExecRunner(timeout time.Duration, logger logging.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{
		Timeout:   timeout,
		logger:    logger,
		waitDelay: 500 * time.Millisecond,
	}
}

// Run starts the command, waits for it and captures its output.
// Resources are released on every path, including timeout.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1, Failure: FailureCanceled, Err: err}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		r.logger.Warn("Command not found", "command", name, "error", err)
		return Result{
			ExitCode: -1,
			Failure:  FailureLaunch,
			Err:      fmt.Errorf("%s: %w", name, ErrCommandNotFound),
			Duration: time.Since(start),
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the whole group so children die with the parent.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = r.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Executing command", "command", name, "args", args)
	runErr := cmd.Run()

	res := Result{
		ExitCode: exitCodeFromError(runErr),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case runErr == nil:
		res.Failure = FailureNone
	case errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Failure = FailureTimeout
		res.Err = fmt.Errorf("%s timed out after %s", name, r.Timeout)
		r.logger.Warn("Command timed out", "command", name, "args", args, "timeout", r.Timeout)
	case ctx.Err() != nil:
		res.Failure = FailureCanceled
		res.Err = ctx.Err()
	case isExitError(runErr):
		res.Failure = FailureExit
		r.logger.Debug("Command exited with error", "command", name, "args", args,
			"exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
	default:
		res.Failure = FailureLaunch
		res.Err = runErr
		r.logger.Warn("Failed to start command", "command", name, "error", runErr)
	}

	return res
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or -1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
