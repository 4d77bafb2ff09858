// Package users serves the tenant's employee accounts.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	"github.com/dalemusser/hrms/internal/app/features/records"
	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auditlog"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/fetch"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/paging"
	"github.com/dalemusser/hrms/internal/app/system/schemas"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users  *userstore.Store
	Cache  *fetch.Cache
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Meta   appmeta.Metadata
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, deps records.Deps) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Cache:  deps.Cache,
		Audit:  deps.Audit,
		ErrLog: deps.ErrLog,
		Meta:   deps.Meta,
		Log:    deps.Log,
	}
}

type listResponse struct {
	Data       []models.User `json:"data"`
	TotalCount int64         `json:"totalCount"`
	Range      paging.Range  `json:"range"`
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, recordstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "users "+op+": not found", err, "The user was not found.")
	case errors.Is(err, tenant.ErrNoTenant):
		h.ErrLog.LogForbidden(w, r, "users "+op+": no tenant", "An organization is required.")
	default:
		h.ErrLog.LogServerError(w, r, "users "+op+" failed", err, "A database error occurred.")
	}
}

// ServeList handles GET /users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	lq := paging.ParseListQuery(r)
	q := models.UserQuery{ID: query.Get(r, "id"), Email: query.Get(r, "email")}
	key := fetch.Key{
		Tenant: tenant.IDFromContext(r.Context()),
		Entity: models.EntityUsers,
		Filter: records.FilterKey("id", q.ID, "email", q.Email),
		Limit:  lq.Limit,
		Offset: lq.Offset,
	}
	handle := fetch.Watch[models.User](r.Context(), h.Cache, key, func(ctx context.Context) (models.Paginated[models.User], error) {
		return h.Users.List(ctx, q, lq)
	})
	defer handle.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	st, err := handle.Wait(ctx)
	if err == nil {
		err = st.Err
	}
	if err != nil {
		h.storeError(w, r, "list", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Data:       st.Data.Data,
		TotalCount: st.Data.TotalCount,
		Range:      paging.ComputeRange(lq, len(st.Data.Data), st.Data.TotalCount),
	})
}

// ServeGet handles GET /users/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user get")
	defer cancel()

	u, err := h.Users.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, "get", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, records.MaxBodyBytes))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "users: read body", err, "Request body could not be read.")
		return
	}
	in, res := schemas.Decode[schemas.UserInput](body)
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return
	}
	var u models.User
	in.Apply(&u)
	if u.AuthMethod == models.AuthMethodPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "users: hash password", err, "Could not create the user.")
			return
		}
		u.PasswordHash = string(hash)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user create")
	defer cancel()

	created, err := h.Users.Create(ctx, u)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		res.Add("email", "A user with this email already exists.")
		uierrors.WriteValidation(w, res)
		return
	}
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}
	h.Cache.Invalidate(created.TenantID, models.EntityUsers)

	actor, _ := auth.CurrentUser(r)
	h.Audit.RecordCreated(r.Context(), r, actor, models.EntityUsers, created.ID.Hex())
	uierrors.WriteJSON(w, http.StatusCreated, created)
}

type statusInput struct {
	Status string `json:"status"`
}

// HandleStatus handles PUT /users/{id}/status with {"status":"active"|"disabled"}.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var in statusInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, records.MaxBodyBytes)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "users: decode status", err, "Request body must be a JSON object.")
		return
	}
	if in.Status != models.StatusActive && in.Status != models.StatusDisabled {
		var res inputval.Result
		res.Add("status", "Status must be one of: active, disabled.")
		uierrors.WriteValidation(w, res)
		return
	}

	id := chi.URLParam(r, "id")
	actor, _ := auth.CurrentUser(r)
	if actor != nil && actor.ID == id && in.Status == models.StatusDisabled {
		h.ErrLog.LogForbidden(w, r, "users: self-disable refused", "You cannot disable your own account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user status")
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, in.Status); err != nil {
		h.storeError(w, r, "status", err)
		return
	}
	h.Cache.Invalidate(tenant.IDFromContext(r.Context()), models.EntityUsers)
	h.Audit.RecordUpdated(r.Context(), r, actor, models.EntityUsers, id)
	w.WriteHeader(http.StatusNoContent)
}
