package repository

import (
	"context"

	"smartdisc/backend/internal/assignment/domain"
	discdomain "smartdisc/backend/internal/disc/domain"
)

// AssignedDisc is a disc together with when it was assigned to the player.
type AssignedDisc struct {
	Disc       discdomain.Disc
	AssignedAt string
}

// Repository defines persistence for disc assignments.
type Repository interface {
	// Create inserts the assignment. Returns false when the (disc, player)
	// pair is already assigned; the existing row is left untouched.
	Create(ctx context.Context, a *domain.Assignment) (bool, error)
	// Delete removes an assignment by id. Returns false when absent.
	Delete(ctx context.Context, id int64) (bool, error)
	// ListByPlayer returns the player's assignments with joined disc names
	// and assigner names, newest first.
	ListByPlayer(ctx context.Context, playerID string) ([]*domain.Assignment, error)
	// ListDiscsForPlayer returns the active discs assigned to the player,
	// ordered by disc id.
	ListDiscsForPlayer(ctx context.Context, playerID string) ([]*AssignedDisc, error)
}
