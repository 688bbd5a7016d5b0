// Package api assembles the HTTP server: stores, resolvers, handlers,
// and the middleware chain.
package api

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewplane/pkg/access"
	"github.com/crewplane/crewplane/pkg/audit"
	"github.com/crewplane/crewplane/pkg/menus"
	"github.com/crewplane/crewplane/pkg/middleware"
	"github.com/crewplane/crewplane/pkg/observability"
	"github.com/crewplane/crewplane/pkg/tenants"
)

// Server represents our API server
type Server struct {
	router  *mux.Router
	db      *sql.DB
	logger  *observability.Logger
	metrics *observability.Metrics

	accessStore   *access.Store
	selector      *access.Selector
	guard         *access.Guard
	aggregator    *access.Aggregator
	tenantService tenants.Service
	menuStore     *menus.Store
	auditLog      audit.Logger
}

// Options carries optional server dependencies. Zero values disable the
// corresponding feature.
type Options struct {
	Logger   *observability.Logger
	Metrics  *observability.Metrics
	AuditLog audit.Logger
}

// NewServer creates a new API server wired over db.
func NewServer(db *sql.DB, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if opts.AuditLog == nil {
		opts.AuditLog = audit.NopLogger{}
	}

	accessStore := access.NewStore(db)
	selector := access.NewSelector(db)
	resolver := access.NewPermissionResolver(accessStore)
	tenantService := tenants.NewPostgresService(db)
	menuStore := menus.NewStore(db)
	guard := access.NewGuard(resolver, selector, accessStore, opts.Metrics)
	aggregator := access.NewAggregator(resolver, selector, menuStore, tenantService)

	s := &Server{
		router:        mux.NewRouter(),
		db:            db,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		accessStore:   accessStore,
		selector:      selector,
		guard:         guard,
		aggregator:    aggregator,
		tenantService: tenantService,
		menuStore:     menuStore,
		auditLog:      opts.AuditLog,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware installs the chain: request id, identity, logging,
// metrics, platform resolution. Order matters; identity runs before
// logging so request logs carry the user id.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestIDMiddleware())
	s.router.Use(middleware.IdentityMiddleware())
	s.router.Use(middleware.LoggingMiddleware(s.logger))
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}
	s.router.Use(middleware.PlatformContextMiddleware(s.tenantService))
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	tenantHandlers := tenants.NewHandlers(s.tenantService)
	tenantHandlers.RegisterRoutes(s.router)

	accessHandlers := access.NewHandlers(s.accessStore, s.selector, s.guard, s.aggregator, s.auditLog, s.logger, s.metrics)
	accessHandlers.RegisterRoutes(s.router)

	menuHandlers := menus.NewHandlers(s.menuStore, s.auditLog, s.logger, s.metrics)
	menuHandlers.RegisterRoutes(s.router)
}

// Guard exposes the permission guard so callers can wrap extra routes.
func (s *Server) Guard() *access.Guard {
	return s.guard
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
