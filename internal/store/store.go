// Package store aggregates the entity repositories behind one handle and
// provides the single-transaction-per-request execution model: every mutating
// operation runs its repository calls inside one InTx closure, so either all
// rows it touches commit or none do.
package store

import (
	"context"
	"database/sql"

	assignmentrepo "smartdisc/backend/internal/assignment/repository"
	auditrepo "smartdisc/backend/internal/audit/repository"
	"smartdisc/backend/internal/db"
	discrepo "smartdisc/backend/internal/disc/repository"
	highscorerepo "smartdisc/backend/internal/highscore/repository"
	identityrepo "smartdisc/backend/internal/identity/repository"
	measurementrepo "smartdisc/backend/internal/measurement/repository"
	throwrepo "smartdisc/backend/internal/throw/repository"
)

// Repos bundles the entity repositories. Inside InTx they are all bound to
// the same transaction.
type Repos struct {
	Discs        discrepo.Repository
	Throws       throwrepo.Repository
	Measurements measurementrepo.Repository
	Audit        auditrepo.Repository
	Highscores   highscorerepo.Repository
	Identity     identityrepo.Repository
	Assignments  assignmentrepo.Repository
}

// Store is the injected persistence handle. Services receive a Store at
// construction; tests substitute an in-memory implementation (storetest).
type Store interface {
	// Repos returns repositories for standalone (auto-commit) access.
	Repos() Repos
	// InTx runs fn with transaction-bound repositories. fn returning nil
	// commits; any error rolls everything back.
	InTx(ctx context.Context, fn func(Repos) error) error
}

// Postgres is the production Store over a *sql.DB.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Store over d.
func NewPostgres(d *sql.DB) *Postgres {
	return &Postgres{db: d}
}

func reposOver(q db.DBTX) Repos {
	return Repos{
		Discs:        discrepo.NewPostgresRepository(q),
		Throws:       throwrepo.NewPostgresRepository(q),
		Measurements: measurementrepo.NewPostgresRepository(q),
		Audit:        auditrepo.NewPostgresRepository(q),
		Highscores:   highscorerepo.NewPostgresRepository(q),
		Identity:     identityrepo.NewPostgresRepository(q),
		Assignments:  assignmentrepo.NewPostgresRepository(q),
	}
}

func (p *Postgres) Repos() Repos {
	return reposOver(p.db)
}

func (p *Postgres) InTx(ctx context.Context, fn func(Repos) error) error {
	return db.InTx(ctx, p.db, func(tx *sql.Tx) error {
		return fn(reposOver(tx))
	})
}
