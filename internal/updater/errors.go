package updater

import "fmt"

// Code classifies an update failure. The CLI prints it verbatim.
type Code string

// Codes reported by Error.
const (
	ErrCodeCheckFailed Code = "CHECK_FAILED"
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNoUpdate    Code = "NO_UPDATE"
	ErrCodeApplyFailed Code = "APPLY_FAILED"
	ErrCodeDisabled    Code = "DISABLED"
)

// Sentinels for errors.Is; any *Error with the same Code matches.
var (
	ErrNoUpdate = &Error{Code: ErrCodeNoUpdate}
	ErrDisabled = &Error{Code: ErrCodeDisabled}
)

// Error is an update failure with its Code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "":
		return string(e.Code)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
