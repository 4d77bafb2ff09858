// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	"github.com/dalemusser/hrms/internal/app/system/auditlog"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/ratelimit"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultRedirect is where a signed-in user lands without a return URL.
const DefaultRedirect = "/dashboard"

// Handler signs users in with the methods this service owns:
// trust (email only, for development) and password (bcrypt).
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Audit      *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	AllowTrust bool
	Log        *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	allowTrust bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Audit:      audit,
		ErrLog:     errLog,
		AllowTrust: allowTrust,
		Log:        logger,
	}
}

type loginResponse struct {
	Redirect string            `json:"redirect"`
	User     *auth.SessionUser `json:"user"`
}

// safeReturn accepts only same-site absolute paths.
func safeReturn(ret string) string {
	ret = strings.TrimSpace(ret)
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") || strings.HasPrefix(ret, "/\\") {
		return DefaultRedirect
	}
	return ret
}

func invalidCredentials(w http.ResponseWriter) {
	uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Body{Error: "Invalid email or password."})
}

// HandleLoginPost handles POST /login (form fields email, password, return).
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: parse form", err, "Invalid form submission.")
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	ret := safeReturn(r.PostForm.Get("return"))

	if email == "" {
		var res inputval.Result
		res.Add("email", "Email is required.")
		uierrors.WriteValidation(w, res)
		return
	}

	if ok, which := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login rate limited", zap.String("limit", which), zap.String("ip", ratelimit.ClientIP(r)))
		h.Audit.LoginFailedRateLimit(r.Context(), r, email)
		uierrors.WriteJSON(w, http.StatusTooManyRequests, uierrors.Body{Error: "Too many sign-in attempts. Please wait and try again."})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, recordstore.ErrNotFound) {
		h.Audit.LoginFailedUserNotFound(r.Context(), r, email)
		invalidCredentials(w)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: lookup user", err, "A database error occurred.")
		return
	}

	if u.Status == models.StatusDisabled {
		h.Audit.LoginFailedUserDisabled(r.Context(), r, u.ID, u.TenantID, email)
		uierrors.WriteJSON(w, http.StatusForbidden, uierrors.Body{Error: "This account is disabled."})
		return
	}

	switch u.AuthMethod {
	case models.AuthMethodPassword:
		if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			h.Audit.LoginFailedWrongPassword(r.Context(), r, u.ID, u.TenantID, email)
			invalidCredentials(w)
			return
		}
	case models.AuthMethodTrust:
		if !h.AllowTrust {
			h.ErrLog.LogForbidden(w, r, "login: trust sign-in disabled", "This sign-in method is not enabled.")
			return
		}
	default:
		h.ErrLog.LogForbidden(w, r, "login: unsupported auth method", "This sign-in method is not enabled.")
		return
	}

	su := userstore.SessionUser(u)
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Could not sign you in.")
		return
	}
	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(r.Context(), r, u.ID, u.TenantID, u.AuthMethod, email)
	h.Log.Info("user signed in", zap.String("user_id", su.ID), zap.String("tenant_id", su.TenantID))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", ret)
		w.WriteHeader(http.StatusOK)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, ret, http.StatusSeeOther)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, loginResponse{Redirect: ret, User: su})
}

// ServeMe handles GET /me: the signed-in user, or isAuthenticated=false.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusOK, map[string]any{"isAuthenticated": false})
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": true,
		"user":            u,
		"name":            u.FullName(),
		"role":            u.PrimaryRole(),
	})
}
