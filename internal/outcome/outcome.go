package outcome

import (
	"errors"
)

// Kind classifies a failure so callers can react without string matching.
type Kind int

const (
	// KindUnknown is any error that was not produced by a vizgate package.
	KindUnknown Kind = iota

	// KindValidation covers malformed or missing input.
	KindValidation

	// KindConflict covers uniqueness violations (login, email, project, view name).
	KindConflict

	// KindNotFound covers unknown users, projects and views.
	KindNotFound

	// KindAuth covers bad credentials, wrong tokens and missing sessions.
	KindAuth

	// KindState covers operations that are invalid for the current state.
	KindState

	// KindIO covers storage and filesystem failures.
	KindIO
)

// String returns the lower-case kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindState:
		return "state"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified error. Package sentinels are *Error values, so
// errors.Is works on the pointer and errors.As recovers the kind.
type Error struct {
	Kind Kind

	// Message is safe to show to end users.
	Message string

	// Warning marks failures that should surface with a warning status.
	Warning bool

	// Err is the underlying cause, if any. It is never shown to users.
	Err error
}

// New returns a classified sentinel.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewWarning returns a classified sentinel reported with a warning status.
func NewWarning(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Warning: true}
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IO wraps a storage or filesystem failure. The message is what users see;
// err is kept for logs.
func IO(message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Wrap passes classified errors through and turns anything else into an
// IO error with the given user message.
func Wrap(message string, err error) error {
	if err == nil || KindOf(err) != KindUnknown {
		return err
	}
	return IO(message, err)
}
