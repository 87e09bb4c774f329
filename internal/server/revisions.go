package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
	auditdomain "smartdisc/backend/internal/audit/domain"
	auditrepo "smartdisc/backend/internal/audit/repository"
)

func (s *Server) handleRevisionHistory(c echo.Context) error {
	recs, err := s.audit.History(c.Request().Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	items := viewAuditRecords(recs)
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (s *Server) handleListRevisions(c echo.Context) error {
	f := auditrepo.ListFilter{
		Table:     c.QueryParam("table"),
		RecordID:  c.QueryParam("record_id"),
		Operation: auditdomain.Operation(c.QueryParam("operation")),
	}

	var err error
	if f.From, err = parseTime("from", c.QueryParam("from"), false); err != nil {
		return respondError(c, err)
	}
	if f.To, err = parseTime("to", c.QueryParam("to"), false); err != nil {
		return respondError(c, err)
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, apperr.Validation("limit must be an integer"))
		}
		f.Limit = n
	}

	recs, err := s.audit.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	items := viewAuditRecords(recs)
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
