package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tasklane/task-api/internal/core/domain"
	"github.com/tasklane/task-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	users       ports.UserRepository
	credentials *CredentialService
	log         zerolog.Logger
}

func NewAuthService(users ports.UserRepository, credentials *CredentialService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, credentials: credentials, log: log}
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.NewValidationError("name, email and password are required")
	}
	if len(password) < domain.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	_, exists, err := s.users.FindByEmail(ctx, email, false)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailInUse
	}

	hash, err := s.credentials.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// The unique index still guards against a concurrent registration
	// slipping past the lookup above.
	user, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		return nil, err
	}

	token, err := s.credentials.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered")

	user.PasswordHash = ""
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and returns a fresh token. Every credential
// failure is reported as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, found, err := s.users.FindByEmail(ctx, email, true)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !found {
		return nil, domain.ErrInvalidCredentials
	}

	if len(password) < domain.MinPasswordLength || !s.credentials.VerifyPassword(password, user.PasswordHash) {
		s.log.Debug().Int64("user_id", user.ID).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.credentials.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &ports.AuthResult{Token: token, User: user}, nil
}
