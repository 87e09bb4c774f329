// Package domain holds the identity entities: users and their opaque bearer
// tokens. Tokens are long-lived random identifiers with no built-in expiry;
// revocation is deletion of the token row.
package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Role is a user's role. Trainers manage assignments and see the admin
// overview; players see only their own data.
type Role string

const (
	RolePlayer  Role = "player"
	RoleTrainer Role = "trainer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RolePlayer || r == RoleTrainer }

// User is a registered account.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Validate checks the user for persistence. Email is expected to already be
// normalized via NormalizeEmail.
func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return errors.New("first name is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return errors.New("last name is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return errors.New("valid email is required")
	}
	if !u.Role.Valid() {
		return errors.New(`role must be "player" or "trainer"`)
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthToken is an opaque bearer credential bound to a user.
type AuthToken struct {
	ID        int64
	UserID    string
	Token     string
	CreatedAt time.Time
}
