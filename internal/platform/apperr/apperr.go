// Package apperr defines the error taxonomy shared by the domain services.
// Services wrap these sentinels with context via fmt.Errorf and %w; handlers
// translate them to HTTP status codes in one place.
package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrValidation rejects bad input (unknown enum value, missing field)
	// before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound signals an unknown alert, request, or appointment id.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals an actor acting outside its authority.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict signals a duplicate open cancellation request.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyResolved signals a re-review of a resolved request.
	// Resolution is one-way; it is never silently overwritten.
	ErrAlreadyResolved = errors.New("already resolved")
)

// HTTPStatus maps a taxonomy error to its HTTP status code. Unrecognized
// errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyResolved):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts a service error into an echo HTTP error carrying the
// mapped status and the error message.
func ToHTTP(err error) error {
	return echo.NewHTTPError(HTTPStatus(err), err.Error())
}
