package repository

import (
	"context"
	"database/sql"
	"time"

	"smartdisc/backend/internal/assignment/domain"
	"smartdisc/backend/internal/db"
	discdomain "smartdisc/backend/internal/disc/domain"
)

// PostgresRepository persists disc assignments.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns an assignment repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

func (r *PostgresRepository) Create(ctx context.Context, a *domain.Assignment) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO disc_assignments (disc_id, player_id, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (disc_id, player_id) DO NOTHING`,
		a.DiscID, a.PlayerID, nullStr(a.AssignedBy), a.AssignedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM disc_assignments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepository) ListByPlayer(ctx context.Context, playerID string) ([]*domain.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT da.id, da.disc_id, da.player_id, COALESCE(da.assigned_by, ''), da.assigned_at,
		       COALESCE(s.name, ''),
		       COALESCE(u.first_name || ' ' || u.last_name, '')
		FROM disc_assignments da
		JOIN discs s ON s.id = da.disc_id
		LEFT JOIN users u ON u.id = da.assigned_by
		WHERE da.player_id = $1
		ORDER BY da.assigned_at DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		var assignedAt time.Time
		if err := rows.Scan(&a.ID, &a.DiscID, &a.PlayerID, &a.AssignedBy, &assignedAt,
			&a.DiscName, &a.AssignedByName); err != nil {
			return nil, err
		}
		a.AssignedAt = assignedAt
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListDiscsForPlayer(ctx context.Context, playerID string) ([]*AssignedDisc, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT s.id, COALESCE(s.name, ''), COALESCE(s.model, ''), COALESCE(s.serial_number, ''),
		       COALESCE(s.firmware_version, ''), COALESCE(s.calibration_date, ''),
		       s.active, s.created_at, s.modified_at, da.assigned_at
		FROM disc_assignments da
		JOIN discs s ON s.id = da.disc_id
		WHERE da.player_id = $1 AND s.active
		ORDER BY s.id`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*AssignedDisc
	for rows.Next() {
		var (
			d          discdomain.Disc
			assignedAt time.Time
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Model, &d.SerialNumber,
			&d.FirmwareVersion, &d.CalibrationDate, &d.Active,
			&d.CreatedAt, &d.ModifiedAt, &assignedAt); err != nil {
			return nil, err
		}
		out = append(out, &AssignedDisc{Disc: d, AssignedAt: assignedAt.UTC().Format(time.RFC3339)})
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
