package audit

import (
	"context"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/audit/domain"
	auditrepo "smartdisc/backend/internal/audit/repository"
	"smartdisc/backend/internal/store"
)

const (
	defaultListLimit = 100
	maxHistoryLimit  = 1000
)

// Query implements the audit read surface.
type Query struct {
	store store.Store
}

// NewQuery returns a Query.
func NewQuery(st store.Store) *Query {
	return &Query{store: st}
}

func validTable(table string) bool {
	return table == domain.TableThrows || table == domain.TableDiscs
}

// List returns audit records matching f, recorded_at descending with ties in
// insertion order. A table filter outside the tracked set is a validation
// error.
func (q *Query) List(ctx context.Context, f auditrepo.ListFilter) ([]*domain.Record, error) {
	if f.Table != "" && !validTable(f.Table) {
		return nil, apperr.Validation("table must be %q or %q", domain.TableThrows, domain.TableDiscs)
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	} else if f.Limit > maxHistoryLimit {
		f.Limit = maxHistoryLimit
	}
	out, err := q.store.Repos().Audit.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list audit records")
	}
	return out, nil
}

// History returns the full mutation history of one tracked record.
func (q *Query) History(ctx context.Context, table, recordID string) ([]*domain.Record, error) {
	if !validTable(table) {
		return nil, apperr.Validation("table must be %q or %q", domain.TableThrows, domain.TableDiscs)
	}
	if recordID == "" {
		return nil, apperr.Validation("record id is required")
	}
	out, err := q.store.Repos().Audit.ListByRecord(ctx, table, recordID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "load audit history")
	}
	return out, nil
}
