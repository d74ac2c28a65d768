package api

import (
	"context"
	"net/http"
	"time"

	"kendala-hub/api/handlers"
	"kendala-hub/config"
	"kendala-hub/core/auth"
	"kendala-hub/core/evidence"
	"kendala-hub/core/kendala"
	"kendala-hub/core/rbac"
	"kendala-hub/core/store"
	"kendala-hub/core/utils"
)

// BackgroundWorker is anything started alongside the HTTP server and
// stopped on shutdown.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context)
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	Users          store.UsersStore
	Sessions       store.SessionStore
	Audits         store.AuditStore
	KendalaStore   store.KendalaStore
	ReferenceStore store.ReferenceStore
	Evidence       *evidence.DiskStore
	Engine         *kendala.Engine
	Policy         *rbac.Policy
	SessionManager *auth.SessionManager
}

type Server struct {
	cfg             *config.AppConfig
	logger          *utils.Logger
	users           store.UsersStore
	sessions        store.SessionStore
	audits          store.AuditStore
	kendalaStore    store.KendalaStore
	referenceStore  store.ReferenceStore
	evidence        *evidence.DiskStore
	engine          *kendala.Engine
	policy          *rbac.Policy
	sessionManager  *auth.SessionManager
	activityTracker *sessionActivity
	httpServer      *http.Server
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	return &Server{
		cfg:             cfg,
		logger:          logger,
		users:           deps.Users,
		sessions:        deps.Sessions,
		audits:          deps.Audits,
		kendalaStore:    deps.KendalaStore,
		referenceStore:  deps.ReferenceStore,
		evidence:        deps.Evidence,
		engine:          deps.Engine,
		policy:          deps.Policy,
		sessionManager:  deps.SessionManager,
		activityTracker: newSessionActivity(),
	}
}

type routeHandlers struct {
	auth      *handlers.AuthHandler
	kendala   *handlers.KendalaHandler
	reference *handlers.ReferenceHandler
	accounts  *handlers.AccountsHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		auth:      handlers.NewAuthHandler(s.cfg, s.users, s.sessionManager, s.audits, s.logger),
		kendala:   handlers.NewKendalaHandler(s.cfg, s.kendalaStore, s.referenceStore, s.users, s.evidence, s.engine, s.policy, s.audits, s.logger),
		reference: handlers.NewReferenceHandler(s.referenceStore, s.logger),
		accounts:  handlers.NewAccountsHandler(s.users, s.logger),
	}
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.logger != nil {
		s.logger.Printf("HTTP listening on %s", s.cfg.ListenAddr)
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
