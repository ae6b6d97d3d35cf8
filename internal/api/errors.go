package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pagepace/internal/api/shared"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/service"
	"github.com/phrazzld/pagepace/internal/service/auth"
	"github.com/phrazzld/pagepace/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error types themselves.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrNotInGoal),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case isBadRequest(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func isBadRequest(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs) ||
		domain.IsValidationError(err) ||
		errors.Is(err, domain.ErrInvalidID) ||
		errors.Is(err, domain.ErrNoGoals) ||
		errors.Is(err, service.ErrDeadlineNotInFuture) ||
		errors.Is(err, service.ErrDeadlineTooFar) ||
		errors.Is(err, store.ErrInvalidEntity)
}

// GetSafeErrorMessage returns a client-facing message for err. Only
// messages of sentinel errors are ever echoed.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return SanitizeValidationError(verrs)
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, domain.ErrNotInGoal):
		return "Book is not part of the given goal"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrNoGoals):
		return "At least one goal is required"
	case errors.Is(err, service.ErrDeadlineNotInFuture):
		return "Deadline must be after today"
	case errors.Is(err, service.ErrDeadlineTooFar):
		return "Deadline must be before the year 3000"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case domain.IsValidationError(err):
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage returns the message of the domain rule err violates.
func validationMessage(err error) string {
	for _, target := range []error{
		domain.ErrEmptyBookTitle,
		domain.ErrInvalidPages,
		domain.ErrInvalidNumberOfBooks,
		domain.ErrInvalidAvgPageCount,
		domain.ErrInvalidDeadline,
		domain.ErrNegativePagesRead,
		domain.ErrNegativePagesToday,
		domain.ErrEndBeforeStart,
		domain.ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return "Validation error: " + target.Error()
		}
	}
	return "Validation error"
}

// SanitizeValidationError describes the first failed field without
// echoing the submitted value.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), tagMessage(fe.Tag()))
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
