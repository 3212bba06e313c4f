package errors

import (
	"errors"
)

// Standard error marks. Every error leaving a service or repository is
// marked with exactly one of these so callers can branch on error class
// without string matching.
var (
	ErrValidation       = errors.New("validation_error")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrInvalidOperation = errors.New("invalid_operation")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrHTTPClient       = errors.New("http_client_error")
	ErrDatabase         = errors.New("database_error")
	ErrSystem           = errors.New("system_error")
	ErrInternal         = errors.New("internal_error")
)

// InternalError is the internal representation of an error. It carries the
// underlying cause, a user-displayable hint and optional reportable details
// alongside the mark assigned via ErrorBuilder.Mark.
type InternalError struct {
	// mark is the classification sentinel (ErrValidation, ErrNotFound, ...)
	mark error
	// err is the underlying error, possibly wrapped with a stack trace
	err error
	// hint is a short, user-displayable message
	hint string
	// details are structured values safe to report to the caller
	details map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.mark != nil {
		return e.mark.Error()
	}
	return "unknown error"
}

// Unwrap exposes the mark so errors.Is(err, ErrNotFound) works across
// arbitrary wrapping.
func (e *InternalError) Unwrap() error {
	return e.mark
}

// Cause returns the underlying error without the mark.
func (e *InternalError) Cause() error {
	return e.err
}

// Hint returns the user-displayable hint, falling back to empty.
func (e *InternalError) Hint() string {
	return e.hint
}

// Details returns the reportable details attached to the error.
func (e *InternalError) Details() map[string]interface{} {
	return e.details
}

// IsValidation checks if the error is marked as a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if the error is marked as a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is marked as an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidOperation checks if the error is marked as an invalid operation.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if the error is marked as permission denied.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsRetryable reports whether the caller may safely retry the operation
// that produced this error. Upstream and persistence failures are
// retryable; validation and state rejections are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrHTTPClient) ||
		errors.Is(err, ErrDatabase) ||
		errors.Is(err, ErrSystem)
}
