// Package domain holds the audit record entity: an immutable log entry
// documenting one mutation to a tracked table (throws, discs). Records are
// created exactly once per mutating operation and never updated or deleted.
package domain

import "time"

// Operation is the kind of mutation an audit record documents.
type Operation string

const (
	// OpInsert documents a single-row insert.
	OpInsert Operation = "INSERT"
	// OpUpdate documents an update to an existing row.
	OpUpdate Operation = "UPDATE"
	// OpDelete documents a soft delete or deactivation.
	OpDelete Operation = "DELETE"
	// OpInsertComplete documents a combined throw-plus-samples insert,
	// summarizing the throw id and the number of samples inserted. Samples
	// get no per-row audit entries.
	OpInsertComplete Operation = "INSERT_COMPLETE"
)

// Tracked table names.
const (
	TableThrows = "throws"
	TableDiscs  = "discs"
)

// SnapshotVersion is the current canonical snapshot schema version. Bump when
// the captured field set changes; readers can then interpret old records.
const SnapshotVersion = 1

// Snapshot is the canonical partial-field capture of a tracked entity at
// mutation time. It supports forensic diffing, not full reconstruction.
// All fields are optional; absent fields marshal away.
type Snapshot struct {
	ID              string   `json:"id,omitempty"`
	DiscID          string   `json:"disc_id,omitempty"`
	PlayerID        string   `json:"player_id,omitempty"`
	Version         int      `json:"version,omitempty"`
	Rotation        *float64 `json:"rotation,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	MaxAcceleration *float64 `json:"max_acceleration,omitempty"`
	Active          *bool    `json:"active,omitempty"`
	DeletedAt       string   `json:"deleted_at,omitempty"`
	// InsertedCount is set on INSERT_COMPLETE records only.
	InsertedCount int `json:"inserted_count,omitempty"`
}

// Actor identifies who performed a mutation and from where.
type Actor struct {
	UserID string
	IP     string
	Agent  string
}

// Record is one immutable audit log entry. ID is assigned by the store and
// establishes insertion order for timestamp ties.
type Record struct {
	ID              int64
	Table           string
	RecordID        string
	Operation       Operation
	Before          *Snapshot
	After           *Snapshot
	Actor           Actor
	SnapshotVersion int
	RecordedAt      time.Time
}
