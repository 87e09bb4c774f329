package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/rbac"
)

// authorize evaluates the access policy for the current user and returns a
// forbidden error on denial. Policy evaluation failures deny too.
func (s *Server) authorize(c echo.Context, action, resourcePlayerID string) error {
	u := currentUser(c)
	allowed, err := s.access.Allow(c.Request().Context(), rbac.Input{
		UserID:           u.ID,
		Role:             string(u.Role),
		Action:           action,
		ResourcePlayerID: resourcePlayerID,
	})
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "evaluate access policy")
	}
	if !allowed {
		return apperr.New(apperr.KindForbidden, "not allowed")
	}
	return nil
}

func (s *Server) handleAssignmentPlayers(c echo.Context) error {
	if err := s.authorize(c, rbac.ActionPlayersList, ""); err != nil {
		return respondError(c, err)
	}
	players, err := s.identity.ListPlayers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	views := make([]userView, 0, len(players))
	for _, p := range players {
		views = append(views, viewUser(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"players": views})
}

func (s *Server) handleAssignmentsForPlayer(c echo.Context) error {
	playerID := c.Param("playerID")
	if err := s.authorize(c, rbac.ActionAssignmentRead, playerID); err != nil {
		return respondError(c, err)
	}
	as, err := s.assignments.ListForPlayer(c.Request().Context(), playerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": viewAssignments(as)})
}

func (s *Server) handleMyDiscs(c echo.Context) error {
	u := currentUser(c)
	if err := s.authorize(c, rbac.ActionAssignmentRead, u.ID); err != nil {
		return respondError(c, err)
	}
	discs, err := s.assignments.ListDiscsForPlayer(c.Request().Context(), u.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"discs": viewAssignedDiscs(discs)})
}

func (s *Server) handleCreateAssignment(c echo.Context) error {
	if err := s.authorize(c, rbac.ActionAssignmentCreate, ""); err != nil {
		return respondError(c, err)
	}
	var req assignmentCreateRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	a, err := s.assignments.Assign(c.Request().Context(), currentUser(c).ID, req.DiscID, req.PlayerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": a.ID, "message": "disc assigned"})
}

func (s *Server) handleDeleteAssignment(c echo.Context) error {
	if err := s.authorize(c, rbac.ActionAssignmentDelete, ""); err != nil {
		return respondError(c, err)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, apperr.Validation("assignment id must be an integer"))
	}
	if err := s.assignments.Remove(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "assignment removed"})
}
