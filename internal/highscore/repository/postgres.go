package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartdisc/backend/internal/db"
	"smartdisc/backend/internal/highscore/domain"
	throwdomain "smartdisc/backend/internal/throw/domain"
)

// PostgresRepository persists highscores.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a highscore repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

func (r *PostgresRepository) Get(ctx context.Context, playerID string) (*domain.Highscore, error) {
	return r.get(ctx, playerID, false)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, playerID string) (*domain.Highscore, error) {
	return r.get(ctx, playerID, true)
}

func (r *PostgresRepository) get(ctx context.Context, playerID string, forUpdate bool) (*domain.Highscore, error) {
	query := `SELECT player_id, best_rotation, best_height, best_max_acceleration, updated_at
		FROM highscores WHERE player_id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var (
		hs                 domain.Highscore
		rot, height, accel sql.NullFloat64
	)
	err := r.q.QueryRowContext(ctx, query, playerID).
		Scan(&hs.PlayerID, &rot, &height, &accel, &hs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	hs.BestRotation = pf(rot)
	hs.BestHeight = pf(height)
	hs.BestMaxAcceleration = pf(accel)
	return &hs, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, hs *domain.Highscore) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO highscores (player_id, best_rotation, best_height, best_max_acceleration, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE SET
			best_rotation = EXCLUDED.best_rotation,
			best_height = EXCLUDED.best_height,
			best_max_acceleration = EXCLUDED.best_max_acceleration,
			updated_at = EXCLUDED.updated_at`,
		hs.PlayerID, nf(hs.BestRotation), nf(hs.BestHeight), nf(hs.BestMaxAcceleration), hs.UpdatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, playerID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM highscores WHERE player_id = $1`, playerID)
	return err
}

func (r *PostgresRepository) BestsFromLiveThrows(ctx context.Context, playerID string) (throwdomain.Metrics, error) {
	var (
		m                  throwdomain.Metrics
		rot, height, accel sql.NullFloat64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT MAX(rotation), MAX(height), MAX(max_acceleration)
		FROM throws WHERE player_id = $1 AND deleted_at IS NULL`, playerID).
		Scan(&rot, &height, &accel)
	if err != nil {
		return m, err
	}
	m.Rotation = pf(rot)
	m.Height = pf(height)
	m.MaxAcceleration = pf(accel)
	return m, nil
}

func pf(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nf(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
