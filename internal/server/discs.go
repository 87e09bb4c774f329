package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	discservice "smartdisc/backend/internal/disc/service"
)

func (s *Server) handleListDiscs(c echo.Context) error {
	discs, err := s.discs.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewDiscs(discs)})
}

func (s *Server) handleGetDisc(c echo.Context) error {
	d, err := s.discs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewDisc(d))
}

func (s *Server) handleRegisterDisc(c echo.Context) error {
	var req discRegisterRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	d, err := s.discs.Register(c.Request().Context(), actorFrom(c), discservice.RegisterInput{
		ID:              req.ID,
		Name:            req.Name,
		Model:           req.Model,
		SerialNumber:    req.SerialNumber,
		FirmwareVersion: req.FirmwareVersion,
		CalibrationDate: req.CalibrationDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": d.ID, "message": "disc registered"})
}

func (s *Server) handleDeactivateDisc(c echo.Context) error {
	if err := s.discs.Deactivate(c.Request().Context(), actorFrom(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "disc deactivated"})
}
