package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
	measurementrepo "smartdisc/backend/internal/measurement/repository"
)

func (s *Server) handleListMeasurements(c echo.Context) error {
	var f measurementrepo.ListFilter
	f.ThrowID = c.QueryParam("throw_id")

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

	ms, err := s.measurements.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewMeasurements(ms)})
}

func (s *Server) handleCreateMeasurement(c echo.Context) error {
	var req singleMeasurementRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	in, err := req.toInput("")
	if err != nil {
		return respondError(c, err)
	}
	id, seq, err := s.ingest.CreateSample(c.Request().Context(), actorFrom(c), req.ThrowID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "sequence_nr": seq})
}

func (s *Server) handleBulkMeasurements(c echo.Context) error {
	var req bulkMeasurementsRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	samples, err := toInputs(req.Measurements)
	if err != nil {
		return respondError(c, err)
	}
	inserted, err := s.ingest.AppendSamples(c.Request().Context(), actorFrom(c), req.ThrowID, samples)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"throw_id": req.ThrowID,
		"inserted": inserted,
		"message":  "measurements stored",
	})
}
