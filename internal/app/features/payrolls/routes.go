package payrolls

import (
	"github.com/dalemusser/hrms/internal/app/features/records"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the payroll CRUD endpoints and the payslip.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := records.Routes(h.Handler, sm)
	r.Get("/{id}/payslip.pdf", h.ServePayslip)
	return r
}
