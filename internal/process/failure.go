package process

// Failure classifies why an invocation did not succeed.
type Failure string

// Failure kinds.
const (
	FailureNone     Failure = ""         // Exited with status 0
	FailureExit     Failure = "exit"     // Ran and exited non-zero
	FailureLaunch   Failure = "launch"   // Binary missing or not executable
	FailureTimeout  Failure = "timeout"  // Killed after the runner timeout
	FailureCanceled Failure = "canceled" // Caller context was canceled
)

// String returns a label suitable for logs and metrics.
func (f Failure) String() string {
	if f == FailureNone {
		return "ok"
	}
	return string(f)
}
