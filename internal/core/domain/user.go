package domain

import "time"

// MinPasswordLength is the shortest password accepted at registration and login.
const MinPasswordLength = 6

// User models a registered account. PasswordHash is only populated when the
// directory was asked for the secret.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims is the identity carried by a bearer token.
type Claims struct {
	UserID int64
	Email  string
}
