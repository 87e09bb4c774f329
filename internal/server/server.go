// Package server is the HTTP surface: Echo routes under /api, the JSON
// error envelope, bearer-token authentication and per-request tracing.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	assignmentservice "smartdisc/backend/internal/assignment/service"
	"smartdisc/backend/internal/audit"
	discservice "smartdisc/backend/internal/disc/service"
	identityservice "smartdisc/backend/internal/identity/service"
	"smartdisc/backend/internal/ingest"
	measurementservice "smartdisc/backend/internal/measurement/service"
	"smartdisc/backend/internal/rbac"
	throwservice "smartdisc/backend/internal/throw/service"
)

// Pinger reports store reachability for the health endpoint, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds the services the HTTP layer dispatches to.
type Deps struct {
	Ingest       *ingest.Service
	Throws       *throwservice.Service
	Measurements *measurementservice.Service
	Discs        *discservice.Service
	Identity     *identityservice.Service
	Assignments  *assignmentservice.Service
	Audit        *audit.Query
	Access       *rbac.Evaluator
	// DB is pinged by /api/health. May be nil (reported as down).
	DB Pinger
}

// Server wraps the Echo instance and the wired services.
type Server struct {
	echo *echo.Echo

	ingest       *ingest.Service
	throws       *throwservice.Service
	measurements *measurementservice.Service
	discs        *discservice.Service
	identity     *identityservice.Service
	assignments  *assignmentservice.Service
	audit        *audit.Query
	access       *rbac.Evaluator
	db           Pinger
}

// New builds the server and registers all routes.
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	s := &Server{
		echo:         e,
		ingest:       deps.Ingest,
		throws:       deps.Throws,
		measurements: deps.Measurements,
		discs:        deps.Discs,
		identity:     deps.Identity,
		assignments:  deps.Assignments,
		audit:        deps.Audit,
		access:       deps.Access,
		db:           deps.DB,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(tracing)
	e.Use(s.attachUser)

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.handleHealth)
	api.GET("/ping", s.handlePing)

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)
	api.GET("/auth/me", s.handleMe, requireUser)
	api.POST("/auth/logout", s.handleLogout, requireUser)

	api.GET("/throws", s.handleListThrows)
	api.POST("/throws", s.handleCreateThrow)
	api.POST("/throws/complete", s.handleCreateThrowComplete)
	api.GET("/throws/:id", s.handleGetThrow)
	api.DELETE("/throws/:id", s.handleDeleteThrow)

	api.GET("/measurements", s.handleListMeasurements)
	api.POST("/measurements", s.handleCreateMeasurement)
	api.POST("/measurements/bulk", s.handleBulkMeasurements)

	api.GET("/discs", s.handleListDiscs)
	api.POST("/discs", s.handleRegisterDisc)
	api.GET("/discs/:id", s.handleGetDisc)
	api.DELETE("/discs/:id", s.handleDeactivateDisc)

	api.GET("/revisions", s.handleListRevisions)
	api.GET("/revisions/:table/:id", s.handleRevisionHistory)

	api.GET("/stats/summary", s.handleStatsSummary)
	api.GET("/export.csv", s.handleExportCSV)

	api.GET("/admin/overview", s.handleAdminOverview, requireUser)

	api.GET("/assignments/players", s.handleAssignmentPlayers, requireUser)
	api.GET("/assignments/player/:playerID", s.handleAssignmentsForPlayer, requireUser)
	api.GET("/assignments/my-discs", s.handleMyDiscs, requireUser)
	api.POST("/assignments", s.handleCreateAssignment, requireUser)
	api.DELETE("/assignments/:id", s.handleDeleteAssignment, requireUser)
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr and serves until Shutdown or failure.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
