package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auditlog"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/csvutil"
	"github.com/dalemusser/hrms/internal/app/system/fetch"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/paging"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxBodyBytes caps create/update request bodies.
const MaxBodyBytes = 1 << 20

// Deps are the collaborators shared by every entity handler.
type Deps struct {
	Cache  *fetch.Cache
	Users  UserChecker
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Meta   appmeta.Metadata
	Log    *zap.Logger
}

// Handler serves one Resource.
type Handler[T, Q any] struct {
	Res    Resource[T, Q]
	Cache  *fetch.Cache
	Users  UserChecker
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Meta   appmeta.Metadata
	Log    *zap.Logger
}

// NewHandler binds res to deps.
func NewHandler[T, Q any](res Resource[T, Q], deps Deps) *Handler[T, Q] {
	return &Handler[T, Q]{
		Res:    res,
		Cache:  deps.Cache,
		Users:  deps.Users,
		Audit:  deps.Audit,
		ErrLog: deps.ErrLog,
		Meta:   deps.Meta,
		Log:    deps.Log,
	}
}

// listResponse is a page plus the range shown to the user.
type listResponse[T any] struct {
	Data       []T          `json:"data"`
	TotalCount int64        `json:"totalCount"`
	Range      paging.Range `json:"range"`
}

// storeError maps store failures onto responses.
func (h *Handler[T, Q]) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, recordstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, h.Res.Entity+" "+op+": not found", err, fmt.Sprintf("The %s was not found.", h.Res.Label))
	case errors.Is(err, tenant.ErrNoTenant):
		h.ErrLog.LogForbidden(w, r, h.Res.Entity+" "+op+": no tenant", "An organization is required.")
	case errors.Is(err, context.DeadlineExceeded):
		h.ErrLog.LogServerError(w, r, h.Res.Entity+" "+op+" timed out", err, "The request took too long. Please try again.")
	default:
		h.ErrLog.LogServerError(w, r, h.Res.Entity+" "+op+" failed", err, "A database error occurred.")
	}
}

// ServeList handles GET /. Pages are served through the fetch cache.
func (h *Handler[T, Q]) ServeList(w http.ResponseWriter, r *http.Request) {
	lq := paging.ParseListQuery(r)
	q := h.Res.ParseQuery(r)
	key := fetch.Key{
		Tenant: tenant.IDFromContext(r.Context()),
		Entity: h.Res.Entity,
		Filter: h.Res.FilterKey(q),
		Limit:  lq.Limit,
		Offset: lq.Offset,
	}

	handle := fetch.Watch[T](r.Context(), h.Cache, key, func(ctx context.Context) (models.Paginated[T], error) {
		return h.Res.Store.List(ctx, q, lq)
	})
	defer handle.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	st, err := handle.Wait(ctx)
	if err != nil {
		h.storeError(w, r, "list", err)
		return
	}
	if st.Err != nil {
		h.storeError(w, r, "list", st.Err)
		return
	}

	page := *st.Data
	uierrors.WriteJSON(w, http.StatusOK, listResponse[T]{
		Data:       page.Data,
		TotalCount: page.TotalCount,
		Range:      paging.ComputeRange(lq, len(page.Data), page.TotalCount),
	})
}

// ServeGet handles GET /{id}.
func (h *Handler[T, Q]) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Res.Entity+" get")
	defer cancel()

	v, err := h.Res.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, "get", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler[T, Q]) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, h.Res.Entity+": read body", err, "Request body could not be read.")
		return nil, false
	}
	return body, true
}

// HandleCreate handles POST /. Nothing is written unless the body validates.
func (h *Handler[T, Q]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	v, res := h.Res.Build(body)
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Res.Entity+" create")
	defer cancel()

	if !h.usersExist(ctx, w, r, "create", v) {
		return
	}

	created, err := h.Res.Store.Create(ctx, v)
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}
	h.changed(r)

	actor, _ := auth.CurrentUser(r)
	h.Audit.RecordCreated(r.Context(), r, actor, h.Res.Entity, h.Res.ID(created))
	uierrors.WriteJSON(w, http.StatusCreated, created)
}

// HandleUpdate handles PUT /{id}.
func (h *Handler[T, Q]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	v, res := h.Res.Build(body)
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Res.Entity+" update")
	defer cancel()

	if !h.usersExist(ctx, w, r, "update", v) {
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.Res.Store.Update(ctx, id, v)
	if err != nil {
		h.storeError(w, r, "update", err)
		return
	}
	h.changed(r)

	actor, _ := auth.CurrentUser(r)
	h.Audit.RecordUpdated(r.Context(), r, actor, h.Res.Entity, id)
	uierrors.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /{id}.
func (h *Handler[T, Q]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, h.Res.Entity+" delete")
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Res.Store.Delete(ctx, id); err != nil {
		h.storeError(w, r, "delete", err)
		return
	}
	h.changed(r)

	actor, _ := auth.CurrentUser(r)
	h.Audit.RecordDeleted(r.Context(), r, actor, h.Res.Entity, id)
	w.WriteHeader(http.StatusNoContent)
}

// ServeExport handles GET /export.csv.
func (h *Handler[T, Q]) ServeExport(w http.ResponseWriter, r *http.Request) {
	if h.Res.CSVRow == nil {
		h.ErrLog.LogNotFound(w, r, h.Res.Entity+": export not supported", nil, "")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, h.Res.Entity+" export")
	defer cancel()

	all, err := h.Res.Store.All(ctx, h.Res.ParseQuery(r))
	if err != nil {
		h.storeError(w, r, "export", err)
		return
	}
	rows := make([][]string, 0, len(all))
	for _, v := range all {
		rows = append(rows, h.Res.CSVRow(v))
	}

	n, err := csvutil.WriteHTTP(w, csvutil.Filename(h.Res.Entity, time.Now()), h.Res.CSVHeader, rows)
	if err != nil {
		// Headers are already sent; all we can do is log.
		h.Log.Warn("csv export write failed", zap.String("entity", h.Res.Entity), zap.Error(err))
		return
	}
	actor, _ := auth.CurrentUser(r)
	h.Audit.RecordsExported(r.Context(), r, actor, h.Res.Entity, n)
}

// usersExist answers 422 when a referenced user is not in the caller's
// tenant, and reports whether the write may proceed.
func (h *Handler[T, Q]) usersExist(ctx context.Context, w http.ResponseWriter, r *http.Request, op string, v T) bool {
	if h.Users == nil || h.Res.UserRefs == nil {
		return true
	}
	refs := h.Res.UserRefs(v)
	fields := make([]string, 0, len(refs))
	for f := range refs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var res inputval.Result
	for _, f := range fields {
		ok, err := h.Users.Exists(ctx, refs[f])
		if err != nil {
			h.storeError(w, r, op, err)
			return false
		}
		if !ok {
			res.Add(f, "User was not found.")
		}
	}
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return false
	}
	return true
}

// changed drops cached pages of this entity for the caller's tenant.
func (h *Handler[T, Q]) changed(r *http.Request) {
	h.Cache.Invalidate(tenant.IDFromContext(r.Context()), h.Res.Entity)
}
