package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tasklane/task-api/internal/core/domain"
)

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. The unique email index is translated to
// domain.ErrEmailInUse.
func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	m := userModel{Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	m.PasswordHash = ""
	return m.toDomain(), nil
}

// FindByEmail returns the user with the given email. The password hash
// column is omitted unless includeSecret is set.
func (r *UserRepository) FindByEmail(ctx context.Context, email string, includeSecret bool) (*domain.User, bool, error) {
	q := r.db
	if !includeSecret {
		q = q.Omit("password_hash")
	}
	return r.first(ctx, q.Where("email = ?", email))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	return r.first(ctx, r.db.Omit("password_hash").Where("id = ?", id))
}

func (r *UserRepository) first(ctx context.Context, q *gorm.DB) (*domain.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m userModel
	if err := q.WithContext(ctx).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), true, nil
}
