package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/rbac"
)

type overviewUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	ThrowsCount int       `json:"throws_count"`
}

type overviewDisc struct {
	ID               string    `json:"id"`
	Name             string    `json:"name,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	ThrowsCountTotal int       `json:"throws_count_total"`
}

type overviewThrow struct {
	ID          string    `json:"id"`
	DiscID      string    `json:"disc_id"`
	PlayerID    string    `json:"player_id,omitempty"`
	Rotation    *float64  `json:"rotation"`
	Height      *float64  `json:"height"`
	PlayerEmail string    `json:"player_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// handleAdminOverview returns the trainer dashboard: every user with their
// live-throw count, every disc with its total, and the newest throws.
func (s *Server) handleAdminOverview(c echo.Context) error {
	if err := s.authorize(c, rbac.ActionAdminView, ""); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()

	userCounts, err := s.identity.ListWithThrowCounts(ctx)
	if err != nil {
		return respondError(c, err)
	}
	users := make([]overviewUser, 0, len(userCounts))
	for _, uc := range userCounts {
		users = append(users, overviewUser{
			ID:          uc.User.ID,
			Email:       uc.User.Email,
			Role:        string(uc.User.Role),
			CreatedAt:   uc.User.CreatedAt,
			ThrowsCount: uc.ThrowsCount,
		})
	}

	discTotals, err := s.discs.ListWithThrowTotals(ctx)
	if err != nil {
		return respondError(c, err)
	}
	discs := make([]overviewDisc, 0, len(discTotals))
	for _, dt := range discTotals {
		discs = append(discs, overviewDisc{
			ID:               dt.Disc.ID,
			Name:             dt.Disc.Name,
			Active:           dt.Disc.Active,
			CreatedAt:        dt.Disc.CreatedAt,
			ThrowsCountTotal: dt.ThrowsTotal,
		})
	}

	recent, err := s.throws.ListRecent(ctx)
	if err != nil {
		return respondError(c, err)
	}
	throws := make([]overviewThrow, 0, len(recent))
	for _, r := range recent {
		throws = append(throws, overviewThrow{
			ID:          r.Throw.ID,
			DiscID:      r.Throw.DiscID,
			PlayerID:    r.Throw.PlayerID,
			Rotation:    r.Throw.Metrics.Rotation,
			Height:      r.Throw.Metrics.Height,
			PlayerEmail: r.PlayerEmail,
			CreatedAt:   r.Throw.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":         users,
		"discs":         discs,
		"throws_sample": throws,
	})
}
