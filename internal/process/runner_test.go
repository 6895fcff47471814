package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunSuccessCapturesStdout(t *testing.T) {
	r := NewExecRunner(time.Second, testLogger())

	res := r.Run(context.Background(), "sh", "-c", "echo hello")
	if !res.OK() {
		t.Fatalf("expected success, got failure %q (err=%v)", res.Failure, res.Err)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	r := NewExecRunner(time.Second, testLogger())

	res := r.Run(context.Background(), "sh", "-c", "echo 'Unable to find simple control' >&2; exit 1")
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Failure != FailureExit {
		t.Errorf("Failure = %q, want %q", res.Failure, FailureExit)
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", res.ExitCode)
	}
	if res.Err != nil {
		t.Errorf("expected nil Err for exit failure, got %v", res.Err)
	}
	if got := res.ErrorText(); got != "Unable to find simple control" {
		t.Errorf("ErrorText() = %q", got)
	}
}

func TestRunMissingBinaryIsLaunchFailure(t *testing.T) {
	r := NewExecRunner(time.Second, testLogger())

	res := r.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	if res.Failure != FailureLaunch {
		t.Fatalf("Failure = %q, want %q", res.Failure, FailureLaunch)
	}
	if !errors.Is(res.Err, ErrCommandNotFound) {
		t.Errorf("expected ErrCommandNotFound, got %v", res.Err)
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	r := NewExecRunner(100*time.Millisecond, testLogger())

	start := time.Now()
	res := r.Run(context.Background(), "sh", "-c", "sleep 10")
	elapsed := time.Since(start)

	if res.Failure != FailureTimeout {
		t.Fatalf("Failure = %q, want %q", res.Failure, FailureTimeout)
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestRunTimeoutKillsChildren(t *testing.T) {
	r := NewExecRunner(100*time.Millisecond, testLogger())

	// The child keeps stdout open; without a group kill Wait would block on the pipe.
	start := time.Now()
	res := r.Run(context.Background(), "sh", "-c", "sleep 10 & wait")
	if res.Failure != FailureTimeout {
		t.Fatalf("Failure = %q, want %q", res.Failure, FailureTimeout)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestRunCanceledContext(t *testing.T) {
	r := NewExecRunner(time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.Run(ctx, "true")
	if res.Failure != FailureCanceled {
		t.Errorf("Failure = %q, want %q", res.Failure, FailureCanceled)
	}
}

func TestNewExecRunnerDefaults(t *testing.T) {
	r := NewExecRunner(0, nil)
	if r.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", r.Timeout, DefaultTimeout)
	}
}

func TestFailureString(t *testing.T) {
	tests := []struct {
		failure Failure
		want    string
	}{
		{FailureNone, "ok"},
		{FailureExit, "exit"},
		{FailureLaunch, "launch"},
		{FailureTimeout, "timeout"},
		{FailureCanceled, "canceled"},
	}
	for _, tt := range tests {
		if got := tt.failure.String(); got != tt.want {
			t.Errorf("Failure(%q).String() = %q, want %q", string(tt.failure), got, tt.want)
		}
	}
}
