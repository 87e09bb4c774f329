package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"smartdisc/backend/internal/db"
	"smartdisc/backend/internal/disc/domain"
)

// PostgresRepository persists discs. It is written against db.DBTX so the
// store can bind it to a transaction.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a disc repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const discColumns = `id, name, model, serial_number, firmware_version, calibration_date, active, created_at, modified_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Disc, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+discColumns+` FROM discs WHERE id = $1`, id)
	d, err := scanDisc(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*domain.Disc, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+discColumns+` FROM discs WHERE active ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Disc
	for rows.Next() {
		d, err := scanDisc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, d *domain.Disc) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO discs (id, name, model, serial_number, firmware_version, calibration_date, active, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, nullStr(d.Name), nullStr(d.Model), nullStr(d.SerialNumber),
		nullStr(d.FirmwareVersion), nullStr(d.CalibrationDate), d.Active,
		d.CreatedAt, d.ModifiedAt)
	return err
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE discs SET active = FALSE, modified_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepository) ListWithThrowTotals(ctx context.Context) ([]*DiscThrowTotal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+discColumns+`,
		       (SELECT COUNT(*) FROM throws w WHERE w.disc_id = discs.id AND w.deleted_at IS NULL)
		FROM discs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*DiscThrowTotal
	for rows.Next() {
		var (
			d     domain.Disc
			total int
		)
		var name, model, serial, fw, cal sql.NullString
		if err := rows.Scan(&d.ID, &name, &model, &serial, &fw, &cal,
			&d.Active, &d.CreatedAt, &d.ModifiedAt, &total); err != nil {
			return nil, err
		}
		d.Name, d.Model, d.SerialNumber = name.String, model.String, serial.String
		d.FirmwareVersion, d.CalibrationDate = fw.String, cal.String
		out = append(out, &DiscThrowTotal{Disc: d, ThrowsTotal: total})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisc(row rowScanner) (*domain.Disc, error) {
	var d domain.Disc
	var name, model, serial, fw, cal sql.NullString
	if err := row.Scan(&d.ID, &name, &model, &serial, &fw, &cal,
		&d.Active, &d.CreatedAt, &d.ModifiedAt); err != nil {
		return nil, err
	}
	d.Name, d.Model, d.SerialNumber = name.String, model.String, serial.String
	d.FirmwareVersion, d.CalibrationDate = fw.String, cal.String
	return &d, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
