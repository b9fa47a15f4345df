package handler

import (
	"time"

	"github.com/tasklane/task-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,notblank"`
	Email    string `json:"email"    validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// loginRequest carries no validation tags: every missing or malformed
// credential is reported as invalid credentials by the service.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- Tasks ---

// createTaskRequest accepts completed and deleted, but both are forced to false.
type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,notblank"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
	Deleted     *bool  `json:"deleted"`
}

// updateTaskRequest is shared by PUT and PATCH. A payload carrying deleted
// fails strict decoding; state changes go through DELETE and restore.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	OwnerID     *int64  `json:"owner_id"`
}

// taskResponse is owned by the transport layer so the JSON contract is not
// coupled to domain changes.
type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Deleted     bool      `json:"deleted"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
