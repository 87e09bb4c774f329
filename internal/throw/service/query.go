// Package service implements the read surface over throws: listing, lookup,
// the stats summary and CSV export. All reads see live throws only.
package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/store"
	"smartdisc/backend/internal/throw/domain"
	throwrepo "smartdisc/backend/internal/throw/repository"
)

const (
	maxListLimit     = 500
	defaultListLimit = 100
	recentLimit      = 20
)

// Service implements throw read operations.
type Service struct {
	store store.Store
}

// NewService returns a Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Get returns the live throw.
func (s *Service) Get(ctx context.Context, id string) (*domain.Throw, error) {
	t, err := s.store.Repos().Throws.GetLive(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "load throw")
	}
	if t == nil {
		return nil, apperr.NotFound("throw %q not found", id)
	}
	return t, nil
}

// List returns live throws matching f, newest first. The limit is clamped
// to 1..500, defaulting to 100.
func (s *Service) List(ctx context.Context, f throwrepo.ListFilter) ([]*domain.Throw, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	out, err := s.store.Repos().Throws.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list throws")
	}
	return out, nil
}

// Stats returns count, max and avg of each metric over live throws.
func (s *Service) Stats(ctx context.Context) (*throwrepo.Stats, error) {
	st, err := s.store.Repos().Throws.Stats(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "load stats")
	}
	return st, nil
}

// ListRecent returns the newest live throws with player emails, for the
// admin overview.
func (s *Service) ListRecent(ctx context.Context) ([]*throwrepo.RecentThrow, error) {
	out, err := s.store.Repos().Throws.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list recent throws")
	}
	return out, nil
}

// ExportFilename is the attachment filename existing tooling expects.
const ExportFilename = "smartdisc_throws.csv"

// maxExportRows caps the export so one request cannot stream unbounded.
const maxExportRows = 10000

var exportHeader = []string{
	"id", "disc_id", "player_id",
	"rotation", "height", "max_acceleration", "created_at",
}

// ExportCSV writes live throws matching f to w as semicolon-separated CSV,
// newest first, in the column layout existing tooling imports.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, f throwrepo.ListFilter) error {
	if f.Limit <= 0 || f.Limit > maxExportRows {
		f.Limit = maxExportRows
	}
	throws, err := s.store.Repos().Throws.List(ctx, f)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "list throws")
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(exportHeader); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "write export")
	}
	for _, t := range throws {
		row := []string{
			t.ID, t.DiscID, t.PlayerID,
			csvFloat(t.Metrics.Rotation),
			csvFloat(t.Metrics.Height),
			csvFloat(t.Metrics.MaxAcceleration),
			csvTime(t.CreatedAt),
		}
		if err := cw.Write(row); err != nil {
			return apperr.Wrap(err, apperr.KindInternal, "write export")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "write export")
	}
	return nil
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
