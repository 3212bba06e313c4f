package errors

import (
	"fmt"

	cerrors "github.com/cockroachdb/errors"
)

// ErrorBuilder provides a fluent API for constructing marked errors:
//
//	ierr.NewError("plan not found").
//		WithHint("Unknown plan identifier").
//		WithReportableDetails(map[string]interface{}{"plan_id": id}).
//		Mark(ierr.ErrNotFound)
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error from a message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			err: cerrors.NewWithDepth(1, message),
		},
	}
}

// NewErrorf starts building an error from a format string.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			err: cerrors.NewWithDepthf(1, format, args...),
		},
	}
}

// WithError starts building an error wrapping an existing one, attaching a
// stack trace if the original does not carry one.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{
			err: cerrors.WithStackDepth(err, 1),
		},
	}
}

// WithHint attaches a short user-displayable message.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user-displayable message.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured values that are safe to expose
// to API callers.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.details = details
	return b
}

// Mark classifies the error with one of the standard marks and finishes the
// build. The mark is surfaced through errors.Is on the returned error.
func (b *ErrorBuilder) Mark(mark error) error {
	b.err.mark = mark
	return b.err
}
