package domain

import "errors"

// Error kinds. Every error returned by the core wraps exactly one of these so
// the boundary layer can map it to a status code with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state")
	ErrConfiguration      = errors.New("configuration error")
)

var (
	ErrTaskNotFound      = newError(ErrNotFound, "task not found")
	ErrTasksNotFound     = newError(ErrNotFound, "no tasks found")
	ErrUserNotFound      = newError(ErrNotFound, "user not found")
	ErrTaskForbidden     = newError(ErrForbidden, "access to task denied")
	ErrInvalidActor      = newError(ErrForbidden, "invalid user")
	ErrOwnerChange       = newError(ErrForbidden, "changing the task owner is not allowed")
	ErrTaskNotDeleted    = newError(ErrInvalidState, "task is not deleted")
	ErrEmailInUse        = newError(ErrConflict, "email already in use")
	ErrCreateInProgress  = newError(ErrConflict, "a request with this idempotency key is still in progress")
	ErrWeakPassword      = newError(ErrValidation, "password must be at least 6 characters")
	ErrMissingSigningKey = newError(ErrConfiguration, "jwt signing key is not configured")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewValidationError returns an error of kind ErrValidation carrying msg.
func NewValidationError(msg string) error {
	return newError(ErrValidation, msg)
}
