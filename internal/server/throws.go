package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
	throwrepo "smartdisc/backend/internal/throw/repository"
	throwservice "smartdisc/backend/internal/throw/service"
)

// throwListFilter reads the shared list/export query parameters.
func throwListFilter(c echo.Context) (throwrepo.ListFilter, error) {
	var f throwrepo.ListFilter
	f.DiscID = c.QueryParam("disc_id")
	f.PlayerID = c.QueryParam("player_id")

	var err error
	if f.From, err = parseTime("from", c.QueryParam("from"), false); err != nil {
		return f, err
	}
	if f.To, err = parseTime("to", c.QueryParam("to"), false); err != nil {
		return f, err
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, apperr.Validation("limit must be an integer")
		}
		f.Limit = n
	}
	return f, nil
}

func (s *Server) handleListThrows(c echo.Context) error {
	f, err := throwListFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	throws, err := s.throws.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	items := viewThrows(throws)
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (s *Server) handleGetThrow(c echo.Context) error {
	t, err := s.throws.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewThrow(t))
}

func (s *Server) handleCreateThrow(c echo.Context) error {
	var req throwCreateRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.ingest.CreateThrow(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":            res.ID,
		"message":       "throw created",
		"is_new_record": res.IsNewRecord,
		"record_metric": res.RecordMetric,
	})
}

func (s *Server) handleCreateThrowComplete(c echo.Context) error {
	var req completeThrowRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}
	samples, err := toInputs(req.Measurements)
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.ingest.CreateThrowWithSamples(c.Request().Context(), actorFrom(c), in, samples)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":            res.ID,
		"inserted":      res.InsertedCount,
		"message":       "throw and measurements created",
		"is_new_record": res.IsNewRecord,
		"record_metric": res.RecordMetric,
	})
}

func (s *Server) handleDeleteThrow(c echo.Context) error {
	if err := s.ingest.DeleteThrow(c.Request().Context(), actorFrom(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "throw deleted"})
}

func (s *Server) handleStatsSummary(c echo.Context) error {
	stats, err := s.throws.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":                stats.Count,
		"rotation_max":         stats.RotationMax,
		"rotation_avg":         stats.RotationAvg,
		"height_max":           stats.HeightMax,
		"height_avg":           stats.HeightAvg,
		"max_acceleration_max": stats.MaxAccelerationMax,
		"max_acceleration_avg": stats.MaxAccelerationAvg,
	})
}

func (s *Server) handleExportCSV(c echo.Context) error {
	f, err := throwListFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	h.Set(echo.HeaderContentDisposition, `attachment; filename="`+throwservice.ExportFilename+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return s.throws.ExportCSV(c.Request().Context(), c.Response(), f)
}
