// Package service implements the read surface over measurement samples.
package service

import (
	"context"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/measurement/domain"
	measurementrepo "smartdisc/backend/internal/measurement/repository"
	"smartdisc/backend/internal/store"
)

const (
	maxListLimit     = 2000
	defaultListLimit = 500
)

// Service implements measurement read operations.
type Service struct {
	store store.Store
}

// NewService returns a Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns samples matching f, newest first. The limit is clamped to
// 1..2000, defaulting to 500.
func (s *Service) List(ctx context.Context, f measurementrepo.ListFilter) ([]*domain.Measurement, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	out, err := s.store.Repos().Measurements.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list measurements")
	}
	return out, nil
}

// CountByThrow returns the number of samples stored for the throw.
func (s *Service) CountByThrow(ctx context.Context, throwID string) (int, error) {
	n, err := s.store.Repos().Measurements.CountByThrow(ctx, throwID)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.KindInternal, "count measurements")
	}
	return n, nil
}
