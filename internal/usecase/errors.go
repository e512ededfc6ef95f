package usecase

import (
	"errors"
	"strings"

	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/validation"
)

// appError passes AppErrors through and wraps anything else as Internal.
func appError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(err)
}

func validationError(err error) error {
	return apperror.Validation(strings.Join(validation.FormatValidationErrors(err), "; "), err)
}
