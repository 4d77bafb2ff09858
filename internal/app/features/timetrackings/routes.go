package timetrackings

import (
	"github.com/dalemusser/hrms/internal/app/features/records"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	return records.Routes(h, sm)
}
