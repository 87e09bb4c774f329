// Package domain holds the throw entity: one recorded disc-throw event with
// its summary metrics and lifecycle state.
package domain

import "time"

// Metrics is the subset of summary metrics present on a throw. Each metric is
// independently optional; at least one must be set at creation.
type Metrics struct {
	Rotation        *float64
	Height          *float64
	MaxAcceleration *float64
}

// Any reports whether at least one metric is present.
func (m Metrics) Any() bool {
	return m.Rotation != nil || m.Height != nil || m.MaxAcceleration != nil
}

// Lifecycle is the throw's lifecycle state: Active, or Deleted at a point in
// time. The zero value is Active. Modelling this as one value rules out the
// inconsistent deleted-flag-without-timestamp states.
type Lifecycle struct {
	deletedAt *time.Time
}

// Active is the lifecycle of a live throw.
func Active() Lifecycle { return Lifecycle{} }

// Deleted returns the lifecycle of a throw soft-deleted at t.
func Deleted(t time.Time) Lifecycle {
	u := t.UTC()
	return Lifecycle{deletedAt: &u}
}

// IsDeleted reports whether the throw is soft-deleted.
func (l Lifecycle) IsDeleted() bool { return l.deletedAt != nil }

// DeletedAt returns the deletion time and true for a deleted throw.
func (l Lifecycle) DeletedAt() (time.Time, bool) {
	if l.deletedAt == nil {
		return time.Time{}, false
	}
	return *l.deletedAt, true
}

// Throw is one recorded disc-throw event. A soft-deleted throw is excluded
// from all live reads but stays addressable through the audit trail.
type Throw struct {
	ID       string
	DiscID   string
	PlayerID string // optional; empty when the throw is unattributed
	Metrics  Metrics
	// StartedAt/EndedAt bound the sample window; either may be zero when the
	// throw was created without samples.
	StartedAt  time.Time
	EndedAt    time.Time
	CreatedAt  time.Time
	ModifiedAt time.Time
	// Version increments on every mutation of the row.
	Version   int
	Lifecycle Lifecycle
}
