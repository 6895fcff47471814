// Package process runs short-lived external commands.
//
// Runner is the single point where the application touches the operating
// system's process facilities. Every invocation:
//   - resolves the binary with exec.LookPath before starting it
//   - captures stdout and stderr into memory
//   - is bounded by a per-call timeout, after which the whole process
//     group is killed
//   - reports the outcome as a Result, never as a Go error
//
// A non-zero exit is an ordinary outcome (a mixer control that does not
// exist on a card, for instance), so callers inspect Result.Failure to tell
// the kinds apart:
//
//	res := runner.Run(ctx, "amixer", "-c", "0", "get", "Master")
//	switch res.Failure {
//	case process.FailureNone:
//	    // parse res.Stdout
//	case process.FailureExit:
//	    // try another control
//	case process.FailureLaunch, process.FailureTimeout:
//	    // binary missing or hung
//	}
package process
