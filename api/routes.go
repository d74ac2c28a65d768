package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kendala-hub/core/rbac"
)

// Handler assembles the full route table. Permissions gate route groups:
// operators see their own kendala and submit evidence, admins additionally
// manage the collection, the terminal directory, accounts and exports.
func (s *Server) Handler() http.Handler {
	h := s.newRouteHandlers()

	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.MethodFunc(http.MethodPost, "/auth/login", s.rateLimitMiddleware(h.auth.Login))
		r.MethodFunc(http.MethodPost, "/auth/logout", s.withSession(h.auth.Logout))
		r.MethodFunc(http.MethodGet, "/auth/me", s.withSession(h.auth.Me))

		r.MethodFunc(http.MethodGet, "/kendala",
			s.withSession(s.requirePermission(rbac.PermKendalaView)(h.kendala.List)))
		r.MethodFunc(http.MethodPost, "/kendala",
			s.withSession(s.requirePermission(rbac.PermKendalaManage)(h.kendala.Create)))
		r.MethodFunc(http.MethodGet, "/kendala/stats",
			s.withSession(s.requirePermission(rbac.PermKendalaView)(h.kendala.Stats)))
		r.MethodFunc(http.MethodGet, "/kendala/recurring",
			s.withSession(s.requirePermission(rbac.PermKendalaView)(h.kendala.Recurring)))
		r.MethodFunc(http.MethodGet, "/kendala/export",
			s.withSession(s.requirePermission(rbac.PermExportRun)(h.kendala.Export)))
		r.MethodFunc(http.MethodPost, "/kendala/bulk-import",
			s.withSession(s.requirePermission(rbac.PermKendalaManage)(h.kendala.BulkImport)))
		r.MethodFunc(http.MethodDelete, "/kendala/{id:[0-9]+}",
			s.withSession(s.requirePermission(rbac.PermKendalaManage)(h.kendala.Delete)))
		r.MethodFunc(http.MethodPost, "/kendala/{id:[0-9]+}/submit",
			s.withSession(s.requirePermission(rbac.PermKendalaSubmit)(h.kendala.Submit)))

		r.MethodFunc(http.MethodGet, "/reference",
			s.withSession(s.requirePermission(rbac.PermReferenceView)(h.reference.List)))
		r.MethodFunc(http.MethodGet, "/accounts/users",
			s.withSession(s.requirePermission(rbac.PermAccountsView)(h.accounts.List)))
	})

	if s.evidence != nil {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.evidence.Dir())))
		r.Handle("/files/*", s.withSession(func(w http.ResponseWriter, r *http.Request) {
			fileServer.ServeHTTP(w, r)
		}))
	}

	return r
}
