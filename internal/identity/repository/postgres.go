package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartdisc/backend/internal/db"
	"smartdisc/backend/internal/identity/domain"
)

// PostgresRepository persists users and auth tokens.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns an identity repository over q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, created_at`

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	return err
}

func (r *PostgresRepository) ListPlayers(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = 'player' ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListWithThrowCounts(ctx context.Context) ([]*UserThrowCount, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+userColumns+`,
		       (SELECT COUNT(*) FROM throws w WHERE w.player_id = users.id AND w.deleted_at IS NULL)
		FROM users
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*UserThrowCount
	for rows.Next() {
		var (
			u    domain.User
			role string
			n    int
		)
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email,
			&u.PasswordHash, &role, &u.CreatedAt, &n); err != nil {
			return nil, err
		}
		u.Role = domain.Role(role)
		out = append(out, &UserThrowCount{User: u, ThrowsCount: n})
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateToken(ctx context.Context, t *domain.AuthToken) error {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO auth_tokens (user_id, token, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		t.UserID, t.Token, t.CreatedAt)
	return row.Scan(&t.ID)
}

func (r *PostgresRepository) DeleteToken(ctx context.Context, token string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepository) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.password_hash, u.role, u.created_at
		FROM users u
		INNER JOIN auth_tokens at ON u.id = at.user_id
		WHERE at.token = $1`, token)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email,
		&u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
