package ports

import (
	"context"

	"github.com/tasklane/task-api/internal/core/domain"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService handles account registration and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenVerifier decodes a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.Claims, error)
}
