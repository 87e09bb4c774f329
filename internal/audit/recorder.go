// Package audit builds and persists audit records for mutations to tracked
// tables. The recorder runs inside the caller's transaction, so a mutation
// commits together with its audit entry or not at all.
package audit

import (
	"context"
	"time"

	"smartdisc/backend/internal/audit/domain"
	"smartdisc/backend/internal/audit/repository"
	discdomain "smartdisc/backend/internal/disc/domain"
	throwdomain "smartdisc/backend/internal/throw/domain"
)

// Recorder writes audit records through a transaction-bound repository.
type Recorder struct{}

// NewRecorder returns a Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// SnapshotThrow captures the audited fields of a throw.
func SnapshotThrow(t *throwdomain.Throw) *domain.Snapshot {
	s := &domain.Snapshot{
		ID:              t.ID,
		DiscID:          t.DiscID,
		PlayerID:        t.PlayerID,
		Version:         t.Version,
		Rotation:        t.Metrics.Rotation,
		Height:          t.Metrics.Height,
		MaxAcceleration: t.Metrics.MaxAcceleration,
	}
	if at, ok := t.Lifecycle.DeletedAt(); ok {
		s.DeletedAt = at.Format(time.RFC3339)
	}
	return s
}

// SnapshotDisc captures the audited fields of a disc.
func SnapshotDisc(d *discdomain.Disc) *domain.Snapshot {
	active := d.Active
	return &domain.Snapshot{ID: d.ID, Active: &active}
}

// ThrowInsert records the creation of a throw without samples.
func (r *Recorder) ThrowInsert(ctx context.Context, repo repository.Repository, t *throwdomain.Throw, actor domain.Actor, at time.Time) error {
	return repo.Create(ctx, &domain.Record{
		Table:           domain.TableThrows,
		RecordID:        t.ID,
		Operation:       domain.OpInsert,
		After:           SnapshotThrow(t),
		Actor:           actor,
		SnapshotVersion: domain.SnapshotVersion,
		RecordedAt:      at,
	})
}

// ThrowInsertComplete records a combined throw-plus-samples insert. The
// samples themselves get no per-row entries; inserted carries their count.
func (r *Recorder) ThrowInsertComplete(ctx context.Context, repo repository.Repository, t *throwdomain.Throw, inserted int, actor domain.Actor, at time.Time) error {
	after := SnapshotThrow(t)
	after.InsertedCount = inserted
	return repo.Create(ctx, &domain.Record{
		Table:           domain.TableThrows,
		RecordID:        t.ID,
		Operation:       domain.OpInsertComplete,
		After:           after,
		Actor:           actor,
		SnapshotVersion: domain.SnapshotVersion,
		RecordedAt:      at,
	})
}

// ThrowDelete records a soft delete, capturing the state before and after.
func (r *Recorder) ThrowDelete(ctx context.Context, repo repository.Repository, before, after *throwdomain.Throw, actor domain.Actor, at time.Time) error {
	return repo.Create(ctx, &domain.Record{
		Table:           domain.TableThrows,
		RecordID:        before.ID,
		Operation:       domain.OpDelete,
		Before:          SnapshotThrow(before),
		After:           SnapshotThrow(after),
		Actor:           actor,
		SnapshotVersion: domain.SnapshotVersion,
		RecordedAt:      at,
	})
}

// DiscInsert records the registration of a disc.
func (r *Recorder) DiscInsert(ctx context.Context, repo repository.Repository, d *discdomain.Disc, actor domain.Actor, at time.Time) error {
	return repo.Create(ctx, &domain.Record{
		Table:           domain.TableDiscs,
		RecordID:        d.ID,
		Operation:       domain.OpInsert,
		After:           SnapshotDisc(d),
		Actor:           actor,
		SnapshotVersion: domain.SnapshotVersion,
		RecordedAt:      at,
	})
}

// DiscDeactivate records the deactivation of a disc.
func (r *Recorder) DiscDeactivate(ctx context.Context, repo repository.Repository, before, after *discdomain.Disc, actor domain.Actor, at time.Time) error {
	return repo.Create(ctx, &domain.Record{
		Table:           domain.TableDiscs,
		RecordID:        before.ID,
		Operation:       domain.OpDelete,
		Before:          SnapshotDisc(before),
		After:           SnapshotDisc(after),
		Actor:           actor,
		SnapshotVersion: domain.SnapshotVersion,
		RecordedAt:      at,
	})
}
