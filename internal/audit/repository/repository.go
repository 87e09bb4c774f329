package repository

import (
	"context"
	"time"

	"smartdisc/backend/internal/audit/domain"
)

// ListFilter narrows an audit listing. Zero values mean "no filter".
type ListFilter struct {
	Table     string
	RecordID  string
	Operation domain.Operation
	From      time.Time
	To        time.Time
	Limit     int
}

// Repository defines persistence for audit records. Records are append-only:
// there is no update or delete.
type Repository interface {
	// Create appends rec and fills in its store-assigned ID.
	Create(ctx context.Context, rec *domain.Record) error
	// List returns records matching f, ordered recorded_at descending with
	// ties broken by id ascending (insertion order, older first).
	List(ctx context.Context, f ListFilter) ([]*domain.Record, error)
	// ListByRecord returns the full history of one tracked record, same
	// ordering as List.
	ListByRecord(ctx context.Context, table, recordID string) ([]*domain.Record, error)
}
