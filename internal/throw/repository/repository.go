package repository

import (
	"context"
	"time"

	"smartdisc/backend/internal/throw/domain"
)

// ListFilter narrows a throw listing. Zero values mean "no filter".
// Listings exclude soft-deleted throws.
type ListFilter struct {
	DiscID   string
	PlayerID string
	From     time.Time
	To       time.Time
	Limit    int
}

// Stats summarizes live throws: row count plus max/avg per metric.
type Stats struct {
	Count              int
	RotationMax        float64
	RotationAvg        float64
	HeightMax          float64
	HeightAvg          float64
	MaxAccelerationMax float64
	MaxAccelerationAvg float64
}

// RecentThrow is a throw joined with the player's email, for the admin
// overview.
type RecentThrow struct {
	Throw       domain.Throw
	PlayerEmail string
}

// Repository defines persistence for throws.
type Repository interface {
	// GetByID returns the throw in any lifecycle state, or nil when absent.
	GetByID(ctx context.Context, id string) (*domain.Throw, error)
	// GetLive returns the throw only when it exists and is not soft-deleted.
	GetLive(ctx context.Context, id string) (*domain.Throw, error)
	Create(ctx context.Context, t *domain.Throw) error
	// SoftDelete marks the throw deleted at the given time and bumps its
	// version. Returns false when the throw is absent or already deleted.
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
	List(ctx context.Context, f ListFilter) ([]*domain.Throw, error)
	Stats(ctx context.Context) (*Stats, error)
	// ListRecent returns the newest live throws with player emails.
	ListRecent(ctx context.Context, limit int) ([]*RecentThrow, error)
}
