package sensor

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes session failures.
type ErrorKind int

const (
	// KindInvalidParameter indicates a request rejected before any I/O
	// (for example a work period outside 0–30).
	KindInvalidParameter ErrorKind = iota
	// KindNoResponse indicates the sensor did not answer within the ack
	// timeout across the whole retry budget.
	KindNoResponse
	// KindIOFailure indicates the byte channel itself failed. The session
	// is not usable afterwards; the caller decides on reconnecting.
	KindIOFailure
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParameter:
		return "Invalid Parameter"
	case KindNoResponse:
		return "No Response"
	case KindIOFailure:
		return "I/O Failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// SessionError is the error type surfaced by Session operations.
type SessionError struct {
	Kind    ErrorKind
	Message string
	Err     error // Underlying channel error, if any
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *SessionError) Unwrap() error {
	return e.Err
}

func newInvalidParameter(format string, args ...any) *SessionError {
	return &SessionError{Kind: KindInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

func newNoResponse(message string) *SessionError {
	return &SessionError{Kind: KindNoResponse, Message: message}
}

func newIOFailure(message string, err error) *SessionError {
	return &SessionError{Kind: KindIOFailure, Message: message, Err: err}
}

// IsNoResponse reports whether err is a session error caused by the sensor
// staying silent through the retry budget.
func IsNoResponse(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Kind == KindNoResponse
}

// IsInvalidParameter reports whether err is a parameter validation error.
func IsInvalidParameter(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Kind == KindInvalidParameter
}

// IsIOFailure reports whether err is a fatal channel error.
func IsIOFailure(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Kind == KindIOFailure
}
