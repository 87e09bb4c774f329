package repository

import (
	"context"

	"smartdisc/backend/internal/identity/domain"
)

// UserThrowCount is a user with their live-throw count, for the admin
// overview.
type UserThrowCount struct {
	User        domain.User
	ThrowsCount int
}

// Repository defines persistence for users and their bearer tokens.
type Repository interface {
	// GetUserByID returns the user or nil when absent.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	// GetUserByEmail looks a user up by normalized email, nil when absent.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	// ListPlayers returns all users with the player role, ordered by last
	// then first name.
	ListPlayers(ctx context.Context) ([]*domain.User, error)
	// ListWithThrowCounts returns every user with their live-throw count,
	// newest account first.
	ListWithThrowCounts(ctx context.Context) ([]*UserThrowCount, error)

	CreateToken(ctx context.Context, t *domain.AuthToken) error
	// DeleteToken revokes a token. Returns false when it did not exist.
	DeleteToken(ctx context.Context, token string) (bool, error)
	// GetUserByToken resolves a bearer token to its user, nil when the
	// token is unknown.
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
}
