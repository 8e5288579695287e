package errorx

import (
	"fmt"
)

// GENERAL ERROR:

// GeneralError - General App Error.
type GeneralError struct {
	message string
	err     error
}

// NewGeneralError - GeneralError constructor.
func NewGeneralError(msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewGeneralErrorWrapper - GeneralError constructor for wrapper of another error.
func NewGeneralErrorWrapper(err error, msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *GeneralError) Error() string {
	if ge.err != nil {
		return fmt.Errorf("%s # Error wrap: %w", ge.message, ge.err).Error()
	}

	return ge.message
}

// DATABASE ERROR

// DatabaseError - Database access Error.
type DatabaseError struct {
	message string
	err     error
}

// NewDatabaseError - DatabaseError constructor.
func NewDatabaseError(msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewDatabaseErrorWrapper - DatabaseError constructor for wrapper of another error.
func NewDatabaseErrorWrapper(err error, msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *DatabaseError) Error() string {
	if ge.err != nil {
		return fmt.Errorf("%s: %w", ge.message, ge.err).Error()
	}

	return ge.message
}

// Unwrap - expose the wrapped cause so callers can inspect driver errors.
func (ge *DatabaseError) Unwrap() error {
	return ge.err
}

// STARTUP ERROR

// StartupError - failure of a startup step (readiness wait, schema migration).
// A StartupError aborts the whole startup sequence.
type StartupError struct {
	message string
	err     error
}

// NewStartupError - StartupError constructor.
func NewStartupError(msg string, args ...any) *StartupError {
	return &StartupError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewStartupErrorWrapper - StartupError constructor for wrapper of another error.
func NewStartupErrorWrapper(err error, msg string, args ...any) *StartupError {
	return &StartupError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (se *StartupError) Error() string {
	if se.err != nil {
		return fmt.Errorf("%s: %w", se.message, se.err).Error()
	}

	return se.message
}

// Unwrap - expose the wrapped cause so callers can match against
// sentinel errors like context.Canceled.
func (se *StartupError) Unwrap() error {
	return se.err
}
