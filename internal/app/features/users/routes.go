package users

import (
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn, tenant.RequireTenant)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(h.Meta.TenantRoles...))
		r.Post("/", h.HandleCreate)
		r.Put("/{id}/status", h.HandleStatus)
	})
	return r
}
