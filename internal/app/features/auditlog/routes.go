// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is
// mounted (typically "/audit"). Only owner roles may read it, and they
// see their own tenant's events.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(tenant.RequireTenant)
		pr.Use(sm.RequireRole(h.Meta.OwnerRoles...))
		pr.Get("/", h.ServeList)
	})
	return r
}
