package outcome

import "errors"

// Status is the coarse result of a user-facing operation.
type Status string

// Status values.
const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
)

// internalMessage replaces messages of unclassified errors so driver text
// never reaches a user.
const internalMessage = "internal error"

// Outcome is the envelope every user-facing operation reports.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a successful outcome.
func OK(message string, data any) Outcome {
	return Outcome{Status: StatusOK, Message: message, Data: data}
}

// Warn builds a warning outcome. Used when the main effect happened but a
// secondary step did not.
func Warn(message string, data any) Outcome {
	return Outcome{Status: StatusWarning, Message: message, Data: data}
}

// FromError converts err into an outcome. Classified errors keep their
// user message; anything else becomes a generic internal error.
func FromError(err error) Outcome {
	if err == nil {
		return OK("", nil)
	}
	var e *Error
	if !errors.As(err, &e) {
		return Outcome{Status: StatusError, Message: internalMessage}
	}
	status := StatusError
	if e.Warning {
		status = StatusWarning
	}
	return Outcome{Status: status, Message: e.Message}
}
