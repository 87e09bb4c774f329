package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"smartdisc/backend/internal/audit/domain"
	"smartdisc/backend/internal/db"
)

// PostgresRepository persists audit records.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns an audit repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) error {
	before, err := marshalSnapshot(rec.Before)
	if err != nil {
		return err
	}
	after, err := marshalSnapshot(rec.After)
	if err != nil {
		return err
	}
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO audit_log (table_name, record_id, operation, old_data, new_data,
			actor_id, actor_ip, actor_agent, snapshot_version, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		rec.Table, rec.RecordID, string(rec.Operation), before, after,
		nullStr(rec.Actor.UserID), nullStr(rec.Actor.IP), nullStr(rec.Actor.Agent),
		rec.SnapshotVersion, rec.RecordedAt)
	return row.Scan(&rec.ID)
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Record, error) {
	where := "TRUE"
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND %s $%d", cond, len(args))
	}
	if f.Table != "" {
		add("table_name =", f.Table)
	}
	if f.RecordID != "" {
		add("record_id =", f.RecordID)
	}
	if f.Operation != "" {
		add("operation =", string(f.Operation))
	}
	if !f.From.IsZero() {
		add("recorded_at >=", f.From)
	}
	if !f.To.IsZero() {
		add("recorded_at <=", f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	// recorded_at DESC with id ASC tiebreak: among same-timestamp records the
	// earlier insertion sorts first.
	query := fmt.Sprintf(`
		SELECT id, table_name, record_id, operation, old_data, new_data,
		       actor_id, actor_ip, actor_agent, snapshot_version, recorded_at
		FROM audit_log WHERE %s
		ORDER BY recorded_at DESC, id ASC
		LIMIT $%d`, where, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListByRecord(ctx context.Context, table, recordID string) ([]*domain.Record, error) {
	return r.List(ctx, ListFilter{Table: table, RecordID: recordID, Limit: 1000})
}

func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var (
		rec              domain.Record
		op               string
		before, after    []byte
		actor, ip, agent sql.NullString
	)
	if err := rows.Scan(&rec.ID, &rec.Table, &rec.RecordID, &op, &before, &after,
		&actor, &ip, &agent, &rec.SnapshotVersion, &rec.RecordedAt); err != nil {
		return nil, err
	}
	rec.Operation = domain.Operation(op)
	rec.Actor = domain.Actor{UserID: actor.String, IP: ip.String, Agent: agent.String}
	var err error
	if rec.Before, err = unmarshalSnapshot(before); err != nil {
		return nil, err
	}
	if rec.After, err = unmarshalSnapshot(after); err != nil {
		return nil, err
	}
	return &rec, nil
}

func marshalSnapshot(s *domain.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func unmarshalSnapshot(b []byte) (*domain.Snapshot, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s domain.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
