package repository

import (
	"context"
	"time"

	"smartdisc/backend/internal/measurement/domain"
)

// ListFilter narrows a measurement listing. Zero values mean "no filter".
type ListFilter struct {
	ThrowID string
	From    time.Time
	To      time.Time
	Limit   int
}

// Repository defines persistence for measurements.
type Repository interface {
	Create(ctx context.Context, m *domain.Measurement) error
	// MaxSequence returns the highest sequence number stored for the throw
	// and whether any sample exists.
	MaxSequence(ctx context.Context, throwID string) (int, bool, error)
	List(ctx context.Context, f ListFilter) ([]*domain.Measurement, error)
	// CountByThrow returns the number of samples stored for the throw.
	CountByThrow(ctx context.Context, throwID string) (int, error)
}
