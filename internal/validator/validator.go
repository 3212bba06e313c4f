package validator

import (
	"github.com/go-playground/validator/v10"

	ierr "github.com/creditledger/creditledger/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest validates a request struct against its validate tags and
// converts field errors into the standard error envelope.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ierr.WithError(err).
				WithHint("Invalid request payload").
				Mark(ierr.ErrValidation)
		}

		details := make(map[string]interface{}, len(validationErrors))
		for _, fe := range validationErrors {
			details[fe.Field()] = fe.Tag()
		}

		return ierr.NewError("request validation failed").
			WithHint("One or more request fields are invalid").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
