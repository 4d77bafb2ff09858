// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/hrms/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/hrms/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/hrms/internal/app/features/errors"
	evaluationsfeature "github.com/dalemusser/hrms/internal/app/features/evaluations"
	healthfeature "github.com/dalemusser/hrms/internal/app/features/health"
	loginfeature "github.com/dalemusser/hrms/internal/app/features/login"
	logoutfeature "github.com/dalemusser/hrms/internal/app/features/logout"
	payrollsfeature "github.com/dalemusser/hrms/internal/app/features/payrolls"
	"github.com/dalemusser/hrms/internal/app/features/records"
	timetrackingsfeature "github.com/dalemusser/hrms/internal/app/features/timetrackings"
	usersfeature "github.com/dalemusser/hrms/internal/app/features/users"
	vacationsfeature "github.com/dalemusser/hrms/internal/app/features/vacations"
	"github.com/dalemusser/hrms/internal/app/store/audit"
	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auditlog"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/fetch"
	"github.com/dalemusser/hrms/internal/app/system/requestid"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It applies the request-id, session and
// tenant middleware and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser reloads the user on each request, so role changes and
	// disabled accounts take effect immediately.
	db := deps.MongoDatabase
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Records: appCfg.AuditLogRecords,
	})
	cache := fetch.New(fetch.Options{
		Size:        appCfg.FetchCacheSize,
		TTL:         appCfg.FetchCacheTTL,
		LoadTimeout: timeouts.Medium(),
	}, logger)
	recDeps := records.Deps{
		Cache:  cache,
		Users:  userstore.New(db),
		Audit:  auditLog,
		ErrLog: errLog,
		Meta:   appCfg.Meta,
		Log:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(tenant.Middleware(appCfg.Meta.TenantName))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.Meta.ApplicationName, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Get("/", serveRoot(appCfg.Meta))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, deps.LoginLimiter, auditLog, errLog, appCfg.AllowTrustLogin, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Get("/me", loginHandler.ServeMe)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	dashboardHandler := dashboardfeature.NewHandler(db, cache, appCfg.Meta, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// HR records
	r.Mount("/payrolls", payrollsfeature.Routes(payrollsfeature.NewHandler(db, recDeps), sessionMgr))
	r.Mount("/vacations", vacationsfeature.Routes(vacationsfeature.NewHandler(db, recDeps), sessionMgr))
	r.Mount("/time-trackings", timetrackingsfeature.Routes(timetrackingsfeature.NewHandler(db, recDeps), sessionMgr))
	r.Mount("/performance-evaluations", evaluationsfeature.Routes(evaluationsfeature.NewHandler(db, recDeps), sessionMgr))
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(db, recDeps), sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, appCfg.Meta, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// serveRoot sends signed-in users to the dashboard and tells everyone else
// where to sign in.
func serveRoot(meta appmeta.Metadata) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			http.Redirect(w, r, loginfeature.DefaultRedirect, http.StatusSeeOther)
			return
		}
		errorsfeature.WriteJSON(w, http.StatusOK, map[string]string{
			"application_name": meta.ApplicationName,
			"login":            "/login",
		})
	}
}
