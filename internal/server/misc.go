package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealth(c echo.Context) error {
	dbState := "down"
	status := "degraded"
	code := http.StatusServiceUnavailable
	if s.db != nil {
		if err := s.db.PingContext(c.Request().Context()); err == nil {
			dbState = "up"
			status = "ok"
			code = http.StatusOK
		}
	}
	return c.JSON(code, echo.Map{
		"status":    status,
		"db":        dbState,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePing(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "pong",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
