package errors

import (
	"errors"
	"net/http"
)

// ErrorDetail is the wire representation of a single error.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the standard JSON error envelope returned by the API.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse converts any error into the standard envelope. Marked
// errors expose their hint and reportable details; everything else is
// reduced to its message.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: err.Error(),
		},
	}

	var ie *InternalError
	if errors.As(err, &ie) {
		if ie.Hint() != "" {
			resp.Error.Message = ie.Hint()
		}
		resp.Error.Details = ie.Details()
	}

	return resp
}

// HTTPStatusFromErr maps an error mark to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusUnauthorized
	case errors.Is(err, ErrHTTPClient):
		return http.StatusBadGateway
	case errors.Is(err, ErrDatabase), errors.Is(err, ErrSystem):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
