package ports

import (
	"context"

	"github.com/tasklane/task-api/internal/core/domain"
)

// UserRepository is the user directory.
type UserRepository interface {
	// FindByEmail looks a user up by exact email. PasswordHash is populated
	// only when includeSecret is true.
	FindByEmail(ctx context.Context, email string, includeSecret bool) (*domain.User, bool, error)
	FindByID(ctx context.Context, id int64) (*domain.User, bool, error)
	// Create inserts a user. A duplicate email yields domain.ErrEmailInUse.
	Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
}
