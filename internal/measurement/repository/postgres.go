package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartdisc/backend/internal/db"
	"smartdisc/backend/internal/measurement/domain"
)

// PostgresRepository persists measurements.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a measurement repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const measurementColumns = `id, throw_id, taken_at, sequence_nr,
	accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z, mag_x, mag_y, mag_z,
	temperature, pressure, gps_lat, gps_lon, gps_alt, created_at`

func (r *PostgresRepository) Create(ctx context.Context, m *domain.Measurement) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO measurements (id, throw_id, taken_at, sequence_nr,
			accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z, mag_x, mag_y, mag_z,
			temperature, pressure, gps_lat, gps_lon, gps_alt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.ID, m.ThrowID, m.TakenAt, m.SequenceNr,
		nf(m.Accelerometer.X), nf(m.Accelerometer.Y), nf(m.Accelerometer.Z),
		nf(m.Gyroscope.X), nf(m.Gyroscope.Y), nf(m.Gyroscope.Z),
		nf(m.Magnetometer.X), nf(m.Magnetometer.Y), nf(m.Magnetometer.Z),
		nf(m.Temperature), nf(m.Pressure),
		nf(m.GPS.Lat), nf(m.GPS.Lon), nf(m.GPS.Alt),
		m.CreatedAt)
	return err
}

func (r *PostgresRepository) MaxSequence(ctx context.Context, throwID string) (int, bool, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT MAX(sequence_nr) FROM measurements WHERE throw_id = $1`, throwID)
	var max sql.NullInt64
	if err := row.Scan(&max); err != nil {
		return 0, false, err
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Measurement, error) {
	where := "TRUE"
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND %s $%d", cond, len(args))
	}
	if f.ThrowID != "" {
		add("throw_id =", f.ThrowID)
	}
	if !f.From.IsZero() {
		add("taken_at >=", f.From)
	}
	if !f.To.IsZero() {
		add("taken_at <=", f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM measurements WHERE %s ORDER BY taken_at DESC LIMIT $%d`,
		measurementColumns, where, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CountByThrow(ctx context.Context, throwID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM measurements WHERE throw_id = $1`, throwID).Scan(&n)
	return n, err
}

func scanMeasurement(rows *sql.Rows) (*domain.Measurement, error) {
	var (
		m                      domain.Measurement
		ax, ay, az, gx, gy, gz sql.NullFloat64
		mx, my, mz             sql.NullFloat64
		temp, press            sql.NullFloat64
		lat, lon, alt          sql.NullFloat64
	)
	if err := rows.Scan(&m.ID, &m.ThrowID, &m.TakenAt, &m.SequenceNr,
		&ax, &ay, &az, &gx, &gy, &gz, &mx, &my, &mz,
		&temp, &press, &lat, &lon, &alt, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Accelerometer = domain.Vector3{X: pf(ax), Y: pf(ay), Z: pf(az)}
	m.Gyroscope = domain.Vector3{X: pf(gx), Y: pf(gy), Z: pf(gz)}
	m.Magnetometer = domain.Vector3{X: pf(mx), Y: pf(my), Z: pf(mz)}
	m.Temperature = pf(temp)
	m.Pressure = pf(press)
	m.GPS = domain.GPS{Lat: pf(lat), Lon: pf(lon), Alt: pf(alt)}
	return &m, nil
}

func nf(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func pf(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
