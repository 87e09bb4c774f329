// Package service implements the disc registry: registration, listing and
// terminal deactivation, each mutation audited in the same transaction.
package service

import (
	"context"
	"strings"
	"time"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/audit"
	auditdomain "smartdisc/backend/internal/audit/domain"
	"smartdisc/backend/internal/disc/domain"
	discrepo "smartdisc/backend/internal/disc/repository"
	"smartdisc/backend/internal/store"
)

// RegisterInput is the payload for registering a disc. The id is caller
// supplied and stable; devices are provisioned with it.
type RegisterInput struct {
	ID              string
	Name            string
	Model           string
	SerialNumber    string
	FirmwareVersion string
	CalibrationDate string
}

// Service implements disc registry operations.
type Service struct {
	store    store.Store
	recorder *audit.Recorder
	now      func() time.Time
}

// NewService returns a Service.
func NewService(st store.Store, recorder *audit.Recorder) *Service {
	return &Service{
		store:    st,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register stores a new disc and its audit record. A duplicate id is a
// conflict.
func (s *Service) Register(ctx context.Context, actor auditdomain.Actor, in RegisterInput) (*domain.Disc, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, apperr.Validation("id is required")
	}
	now := s.now()
	d := &domain.Disc{
		ID:              strings.TrimSpace(in.ID),
		Name:            in.Name,
		Model:           in.Model,
		SerialNumber:    in.SerialNumber,
		FirmwareVersion: in.FirmwareVersion,
		CalibrationDate: in.CalibrationDate,
		Active:          true,
		CreatedAt:       now,
		ModifiedAt:      now,
	}
	if err := d.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	err := s.store.InTx(ctx, func(r store.Repos) error {
		existing, err := r.Discs.GetByID(ctx, d.ID)
		if err != nil {
			return apperr.FromStore(err, "load disc")
		}
		if existing != nil {
			return apperr.Conflict("disc %q already exists", d.ID)
		}
		if err := r.Discs.Create(ctx, d); err != nil {
			return apperr.FromStore(err, "insert disc")
		}
		return apperr.FromStore(s.recorder.DiscInsert(ctx, r.Audit, d, actor, now), "record audit")
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns the disc in any state.
func (s *Service) Get(ctx context.Context, id string) (*domain.Disc, error) {
	d, err := s.store.Repos().Discs.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "load disc")
	}
	if d == nil {
		return nil, apperr.NotFound("disc %q not found", id)
	}
	return d, nil
}

// List returns active discs, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.Disc, error) {
	out, err := s.store.Repos().Discs.ListActive(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list discs")
	}
	return out, nil
}

// ListWithThrowTotals returns every disc with its live-throw count, for the
// admin overview.
func (s *Service) ListWithThrowTotals(ctx context.Context) ([]*discrepo.DiscThrowTotal, error) {
	out, err := s.store.Repos().Discs.ListWithThrowTotals(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list discs")
	}
	return out, nil
}

// Deactivate terminally deactivates a disc and records the audit DELETE.
// Deactivating an already inactive disc is a conflict.
func (s *Service) Deactivate(ctx context.Context, actor auditdomain.Actor, id string) error {
	if id == "" {
		return apperr.Validation("id is required")
	}
	now := s.now()
	return s.store.InTx(ctx, func(r store.Repos) error {
		before, err := r.Discs.GetByID(ctx, id)
		if err != nil {
			return apperr.FromStore(err, "load disc")
		}
		if before == nil {
			return apperr.NotFound("disc %q not found", id)
		}
		if !before.Active {
			return apperr.Conflict("disc %q is already deactivated", id)
		}
		ok, err := r.Discs.Deactivate(ctx, id, now)
		if err != nil {
			return apperr.FromStore(err, "deactivate disc")
		}
		if !ok {
			return apperr.NotFound("disc %q not found", id)
		}
		after := *before
		after.Active = false
		after.ModifiedAt = now
		return apperr.FromStore(s.recorder.DiscDeactivate(ctx, r.Audit, before, &after, actor, now), "record audit")
	})
}
