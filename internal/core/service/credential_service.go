package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasklane/task-api/internal/core/domain"
)

const (
	// TokenTTL is the fixed lifetime of an issued bearer token.
	TokenTTL = 24 * time.Hour

	// DefaultBcryptCost keeps verification in the tens of milliseconds.
	DefaultBcryptCost = 10
)

// TokenClaims is the JWT payload issued to users.
type TokenClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CredentialService hashes passwords and issues/validates bearer tokens.
type CredentialService struct {
	signingKey []byte
	cost       int
	now        func() time.Time
}

// NewCredentialService returns a CredentialService. An empty signingKey is
// accepted here and reported as domain.ErrMissingSigningKey on first use.
func NewCredentialService(signingKey string, cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &CredentialService{signingKey: []byte(signingKey), cost: cost, now: time.Now}
}

// HashPassword returns a salted bcrypt hash of plaintext.
func (s *CredentialService) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash.
func (s *CredentialService) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IssueToken signs a token carrying id and email that expires after TokenTTL.
func (s *CredentialService) IssueToken(userID int64, email string) (string, error) {
	if len(s.signingKey) == 0 {
		return "", domain.ErrMissingSigningKey
	}

	now := s.now()
	claims := TokenClaims{
		ID:    userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, algorithm and expiry and returns the
// carried identity. Every failure wraps domain.ErrUnauthorized.
func (s *CredentialService) VerifyToken(token string) (*domain.Claims, error) {
	if len(s.signingKey) == 0 {
		return nil, domain.ErrMissingSigningKey
	}

	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if !parsed.Valid || claims.ID <= 0 {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	return &domain.Claims{UserID: claims.ID, Email: claims.Email}, nil
}
