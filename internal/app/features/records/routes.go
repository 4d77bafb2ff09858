package records

import (
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the CRUD endpoints. Reads need a signed-in tenant user;
// writes also need one of the tenant roles. Callers may add more routes
// to the returned router.
func Routes[T, Q any](h *Handler[T, Q], sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn, tenant.RequireTenant)

	r.Get("/", h.ServeList)
	r.Get("/export.csv", h.ServeExport)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(h.Meta.TenantRoles...))
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
