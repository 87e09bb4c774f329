package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartdisc/backend/internal/db"
	"smartdisc/backend/internal/throw/domain"
)

// PostgresRepository persists throws.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a throw repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const throwColumns = `id, disc_id, player_id, rotation, height, max_acceleration,
	started_at, ended_at, created_at, modified_at, version, deleted_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Throw, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+throwColumns+` FROM throws WHERE id = $1`, id)
	t, err := scanThrow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *PostgresRepository) GetLive(ctx context.Context, id string) (*domain.Throw, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+throwColumns+` FROM throws WHERE id = $1 AND deleted_at IS NULL`, id)
	t, err := scanThrow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *PostgresRepository) Create(ctx context.Context, t *domain.Throw) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO throws (id, disc_id, player_id, rotation, height, max_acceleration,
			started_at, ended_at, created_at, modified_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.DiscID, nullStr(t.PlayerID),
		nullFloat(t.Metrics.Rotation), nullFloat(t.Metrics.Height), nullFloat(t.Metrics.MaxAcceleration),
		nullTime(t.StartedAt), nullTime(t.EndedAt), t.CreatedAt, t.ModifiedAt, t.Version)
	return err
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE throws
		SET deleted_at = $2, modified_at = $2, version = version + 1
		WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Throw, error) {
	where := "deleted_at IS NULL"
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND %s $%d", cond, len(args))
	}
	if f.DiscID != "" {
		add("disc_id =", f.DiscID)
	}
	if f.PlayerID != "" {
		add("player_id =", f.PlayerID)
	}
	if !f.From.IsZero() {
		add("created_at >=", f.From)
	}
	if !f.To.IsZero() {
		add("created_at <=", f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM throws WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		throwColumns, where, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Throw
	for rows.Next() {
		t, err := scanThrow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(MAX(rotation), 0), COALESCE(AVG(rotation), 0),
		       COALESCE(MAX(height), 0), COALESCE(AVG(height), 0),
		       COALESCE(MAX(max_acceleration), 0), COALESCE(AVG(max_acceleration), 0)
		FROM throws WHERE deleted_at IS NULL`)
	var s Stats
	if err := row.Scan(&s.Count,
		&s.RotationMax, &s.RotationAvg,
		&s.HeightMax, &s.HeightAvg,
		&s.MaxAccelerationMax, &s.MaxAccelerationAvg); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*RecentThrow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT w.id, w.disc_id, w.player_id, w.rotation, w.height, w.max_acceleration,
		       w.started_at, w.ended_at, w.created_at, w.modified_at, w.version, w.deleted_at,
		       u.email
		FROM throws w
		LEFT JOIN users u ON u.id = w.player_id
		WHERE w.deleted_at IS NULL
		ORDER BY w.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*RecentThrow
	for rows.Next() {
		var (
			t     domain.Throw
			email sql.NullString
		)
		player, rot, height, accel, started, ended, deleted, err := scanThrowInto(rows, &t, &email)
		if err != nil {
			return nil, err
		}
		applyNullable(&t, player, rot, height, accel, started, ended, deleted)
		out = append(out, &RecentThrow{Throw: t, PlayerEmail: email.String})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThrow(row rowScanner) (*domain.Throw, error) {
	var t domain.Throw
	player, rot, height, accel, started, ended, deleted, err := scanThrowInto(row, &t)
	if err != nil {
		return nil, err
	}
	applyNullable(&t, player, rot, height, accel, started, ended, deleted)
	return &t, nil
}

// scanThrowInto scans the throw columns plus any extra destinations appended
// by the caller (e.g. a joined email column).
func scanThrowInto(row rowScanner, t *domain.Throw, extra ...any) (
	player sql.NullString,
	rot, height, accel sql.NullFloat64,
	started, ended, deleted sql.NullTime,
	err error,
) {
	dest := []any{&t.ID, &t.DiscID, &player, &rot, &height, &accel,
		&started, &ended, &t.CreatedAt, &t.ModifiedAt, &t.Version, &deleted}
	dest = append(dest, extra...)
	err = row.Scan(dest...)
	return
}

func applyNullable(t *domain.Throw,
	player sql.NullString,
	rot, height, accel sql.NullFloat64,
	started, ended, deleted sql.NullTime,
) {
	t.PlayerID = player.String
	if rot.Valid {
		v := rot.Float64
		t.Metrics.Rotation = &v
	}
	if height.Valid {
		v := height.Float64
		t.Metrics.Height = &v
	}
	if accel.Valid {
		v := accel.Float64
		t.Metrics.MaxAcceleration = &v
	}
	if started.Valid {
		t.StartedAt = started.Time
	}
	if ended.Valid {
		t.EndedAt = ended.Time
	}
	if deleted.Valid {
		t.Lifecycle = domain.Deleted(deleted.Time)
	} else {
		t.Lifecycle = domain.Active()
	}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
