// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	"github.com/dalemusser/hrms/internal/app/store/audit"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/paging"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /audit: the tenant's audit events, newest first,
// filtered by category, event_type, entity and a start/end date range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	lq := paging.ParseListQuery(r)
	filter := audit.QueryFilter{
		TenantID:  tenant.IDFromContext(r.Context()),
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		Entity:    strings.TrimSpace(query.Get(r, "entity")),
		Limit:     lq.Limit,
		Offset:    lq.Offset,
	}

	var res inputval.Result
	if s := strings.TrimSpace(query.Get(r, "start_date")); s != "" {
		if t, err := time.Parse(inputval.DateLayout, s); err == nil {
			filter.StartTime = &t
		} else {
			res.Add("start_date", "Start date must be YYYY-MM-DD.")
		}
	}
	if s := strings.TrimSpace(query.Get(r, "end_date")); s != "" {
		if t, err := time.Parse(inputval.DateLayout, s); err == nil {
			// End of day
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &end
		} else {
			res.Add("end_date", "End date must be YYYY-MM-DD.")
		}
	}
	if filter.Category != "" && eventTypesForCategory(filter.Category) == nil {
		res.Add("category", "Category must be one of: auth, records.")
	}
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log query failed", err, "A database error occurred.")
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log count failed", err, "A database error occurred.")
		return
	}

	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, toRow(e))
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Data:       rows,
		TotalCount: total,
		Range:      paging.ComputeRange(lq, len(rows), total),
		Categories: []string{audit.CategoryAuth, audit.CategoryRecords},
		EventTypes: eventTypesForCategory(filter.Category),
	})
}
