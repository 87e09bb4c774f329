// Package service implements disc assignments: trainers hand active discs to
// players; each (disc, player) pair is assigned at most once.
package service

import (
	"context"
	"time"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/assignment/domain"
	assignmentrepo "smartdisc/backend/internal/assignment/repository"
	identitydomain "smartdisc/backend/internal/identity/domain"
	"smartdisc/backend/internal/store"
)

// Service implements assignment operations. Role checks happen at the HTTP
// layer via rbac; the service enforces referential rules.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService returns a Service.
func NewService(st store.Store) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Assign hands the disc to the player. The disc must be active, the player a
// player-role user; an existing assignment of the pair is a conflict.
func (s *Service) Assign(ctx context.Context, assignedBy, discID, playerID string) (*domain.Assignment, error) {
	if discID == "" || playerID == "" {
		return nil, apperr.Validation("disc_id and player_id are required")
	}
	a := &domain.Assignment{
		DiscID:     discID,
		PlayerID:   playerID,
		AssignedBy: assignedBy,
		AssignedAt: s.now(),
	}
	err := s.store.InTx(ctx, func(r store.Repos) error {
		d, err := r.Discs.GetByID(ctx, discID)
		if err != nil {
			return apperr.FromStore(err, "load disc")
		}
		if d == nil || !d.Active {
			return apperr.NotFound("disc %q not found", discID)
		}
		u, err := r.Identity.GetUserByID(ctx, playerID)
		if err != nil {
			return apperr.FromStore(err, "load player")
		}
		if u == nil {
			return apperr.NotFound("player %q not found", playerID)
		}
		if u.Role != identitydomain.RolePlayer {
			return apperr.Validation("user %q is not a player", playerID)
		}
		inserted, err := r.Assignments.Create(ctx, a)
		if err != nil {
			return apperr.FromStore(err, "insert assignment")
		}
		if !inserted {
			return apperr.Conflict("disc %q is already assigned to player %q", discID, playerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Remove deletes an assignment by id.
func (s *Service) Remove(ctx context.Context, id int64) error {
	ok, err := s.store.Repos().Assignments.Delete(ctx, id)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "delete assignment")
	}
	if !ok {
		return apperr.NotFound("assignment %d not found", id)
	}
	return nil
}

// ListForPlayer returns the player's assignments with joined display fields.
func (s *Service) ListForPlayer(ctx context.Context, playerID string) ([]*domain.Assignment, error) {
	out, err := s.store.Repos().Assignments.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list assignments")
	}
	return out, nil
}

// ListDiscsForPlayer returns the active discs assigned to the player.
func (s *Service) ListDiscsForPlayer(ctx context.Context, playerID string) ([]*assignmentrepo.AssignedDisc, error) {
	out, err := s.store.Repos().Assignments.ListDiscsForPlayer(ctx, playerID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list assigned discs")
	}
	return out, nil
}
