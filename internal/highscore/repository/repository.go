package repository

import (
	"context"

	"smartdisc/backend/internal/highscore/domain"
	throwdomain "smartdisc/backend/internal/throw/domain"
)

// Repository defines persistence for highscores.
type Repository interface {
	// Get returns the player's highscore row or nil when none exists.
	Get(ctx context.Context, playerID string) (*domain.Highscore, error)
	// GetForUpdate is Get with a row lock, for use inside the ingestion
	// transaction so concurrent evaluations of the same player serialize.
	GetForUpdate(ctx context.Context, playerID string) (*domain.Highscore, error)
	// Upsert inserts or replaces the player's row.
	Upsert(ctx context.Context, hs *domain.Highscore) error
	// Delete removes the player's row. Used by the recompute delete policy
	// when no live throws remain.
	Delete(ctx context.Context, playerID string) error
	// BestsFromLiveThrows derives the player's per-metric maxima from live
	// (non-deleted) throws. Metrics never observed stay nil.
	BestsFromLiveThrows(ctx context.Context, playerID string) (throwdomain.Metrics, error)
}
