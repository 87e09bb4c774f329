package repository

import (
	"context"
	"time"

	"smartdisc/backend/internal/disc/domain"
)

// DiscThrowTotal is a disc with its live-throw total, for the admin overview.
type DiscThrowTotal struct {
	Disc        domain.Disc
	ThrowsTotal int
}

// Repository defines persistence for discs.
type Repository interface {
	// GetByID returns the disc or nil when absent. Inactive discs are
	// returned too; callers decide whether deactivation matters.
	GetByID(ctx context.Context, id string) (*domain.Disc, error)
	// ListActive returns active discs, newest first.
	ListActive(ctx context.Context) ([]*domain.Disc, error)
	Create(ctx context.Context, d *domain.Disc) error
	// Deactivate clears the active flag. Returns false when no row matched.
	Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
	// ListWithThrowTotals returns every disc with its live-throw count,
	// newest first.
	ListWithThrowTotals(ctx context.Context) ([]*DiscThrowTotal, error)
}
