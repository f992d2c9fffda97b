// Package apperr defines the error type used throughout Barricade.
package apperr

import "fmt"

// Error is a wrapper for application errors. Message may contain
// printf-style verbs which are filled in through Fmt.
type Error struct {
	Cause   error
	Message string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Fmt returns a copy of the error with its message verbs substituted.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Cause:   e.Cause,
	}
}

// Wrap returns a copy of the error with an underlying cause attached.
func (e *Error) Wrap(cause error) *Error {
	return &Error{
		Message: e.Message,
		Cause:   cause,
	}
}
