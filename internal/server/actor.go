package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
	auditdomain "smartdisc/backend/internal/audit/domain"
	identitydomain "smartdisc/backend/internal/identity/domain"
)

const (
	bearerPrefix   = "bearer "
	currentUserKey = "current_user"
)

// bearerToken returns the Bearer token from the Authorization header, or ""
// when missing or malformed.
func bearerToken(c echo.Context) string {
	v := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

// attachUser resolves the Bearer token, if one is supplied, and stores the
// user on the request context. It never rejects: sensor endpoints accept
// unauthenticated device writes, and protected routes check separately via
// requireUser. An unknown token is treated like no token.
func (s *Server) attachUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := bearerToken(c); token != "" {
			if user, err := s.identity.ResolveToken(c.Request().Context(), token); err == nil {
				c.Set(currentUserKey, user)
			}
		}
		return next(c)
	}
}

// requireUser rejects requests without a resolved user.
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return respondError(c, apperr.New(apperr.KindUnauthorized, "missing or invalid token"))
		}
		return next(c)
	}
}

// currentUser returns the authenticated user, or nil.
func currentUser(c echo.Context) *identitydomain.User {
	u, _ := c.Get(currentUserKey).(*identitydomain.User)
	return u
}

// actorFrom builds the audit actor for the request: the authenticated user
// when present, plus client IP and user agent. Device writes without a token
// get an empty user id.
func actorFrom(c echo.Context) auditdomain.Actor {
	actor := auditdomain.Actor{
		IP:    c.RealIP(),
		Agent: c.Request().UserAgent(),
	}
	if u := currentUser(c); u != nil {
		actor.UserID = u.ID
	}
	return actor
}
