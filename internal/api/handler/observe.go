package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/tasklane/task-api/internal/core/domain"
)

// resultLabel turns an operation outcome into a low-cardinality metric label.
func resultLabel(err error) string {
	var he *echo.HTTPError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &he):
		return "bad_request"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}
