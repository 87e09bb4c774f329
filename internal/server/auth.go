package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	identitydomain "smartdisc/backend/internal/identity/domain"
	identityservice "smartdisc/backend/internal/identity/service"
)

type authResponse struct {
	OK    bool     `json:"ok"`
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	user, err := s.identity.Register(ctx, identityservice.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            identitydomain.Role(req.Role),
	})
	if err != nil {
		return respondError(c, err)
	}
	token, err := s.identity.IssueToken(ctx, user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, authResponse{OK: true, Token: token, User: viewUser(user)})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := bindValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	token, user, err := s.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{OK: true, Token: token, User: viewUser(user)})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": viewUser(currentUser(c))})
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.identity.Logout(c.Request().Context(), bearerToken(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "logged out"})
}
