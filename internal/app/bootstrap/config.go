// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the HR app.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: HRMS_MONGO_URI, HRMS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "hrms", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "hrms-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Application metadata
	{Name: "application_name", Default: "HR Management System", Desc: "Application display name"},
	{Name: "tenant_name", Default: "Organization", Desc: "Display label for a tenant"},
	{Name: "owner_roles", Default: "Owner", Desc: "Comma-separated owner roles"},
	{Name: "customer_roles", Default: "", Desc: "Comma-separated customer roles (hidden from the All Users section)"},
	{Name: "tenant_roles", Default: "Owner,HR Manager", Desc: "Comma-separated roles allowed to change tenant records"},
	{Name: "add_ons", Default: "file upload,chat,notifications,file", Desc: "Comma-separated enabled add-ons"},

	// Fetch cache and dashboard
	{Name: "fetch_cache_size", Default: 1024, Desc: "Max cached list pages"},
	{Name: "fetch_cache_ttl", Default: "5m", Desc: "Cached list page lifetime (0 disables expiry)"},
	{Name: "dashboard_stat_wait", Default: "750ms", Desc: "How long the dashboard waits for stat cards"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_records", Default: "all", Desc: "Record change logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Sign-in
	{Name: "allow_trust_login", Default: true, Desc: "Allow email-only sign-in for trust users"},
	{Name: "login_ip_burst", Default: 20, Desc: "Sign-in attempts per IP before throttling"},
	{Name: "login_email_burst", Default: 5, Desc: "Sign-in attempts per email before throttling"},

	// Owner bootstrap
	{Name: "seed_owner_email", Default: "", Desc: "Email of an owner account created or refreshed on startup"},
	{Name: "seed_owner_password", Default: "", Desc: "Password for the seeded owner (blank means trust sign-in)"},
	{Name: "seed_owner_tenant", Default: "default", Desc: "Tenant of the seeded owner"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HRMS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	meta := appmeta.Default()
	meta.ApplicationName = appValues.String("application_name")
	meta.TenantName = appValues.String("tenant_name")
	meta.OwnerRoles = appmeta.SplitList(appValues.String("owner_roles"))
	meta.CustomerRoles = appmeta.SplitList(appValues.String("customer_roles"))
	meta.TenantRoles = appmeta.SplitList(appValues.String("tenant_roles"))
	meta.AddOns = appmeta.SplitList(appValues.String("add_ons"))

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		Meta: meta,

		FetchCacheSize: appValues.Int("fetch_cache_size"),
		FetchCacheTTL:  appValues.Duration("fetch_cache_ttl", 5*time.Minute),
		StatWait:       appValues.Duration("dashboard_stat_wait", 750*time.Millisecond),

		AuditLogAuth:    strings.ToLower(appValues.String("audit_log_auth")),
		AuditLogRecords: strings.ToLower(appValues.String("audit_log_records")),

		AllowTrustLogin: appValues.Bool("allow_trust_login"),
		LoginIPBurst:    appValues.Int("login_ip_burst"),
		LoginEmailBurst: appValues.Int("login_email_burst"),

		SeedOwnerEmail:    strings.TrimSpace(appValues.String("seed_owner_email")),
		SeedOwnerPassword: appValues.String("seed_owner_password"),
		SeedOwnerTenant:   strings.TrimSpace(appValues.String("seed_owner_tenant")),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if len(appCfg.Meta.TenantRoles) == 0 {
		return fmt.Errorf("tenant_roles must name at least one role")
	}
	for key, mode := range map[string]string{
		"audit_log_auth":    appCfg.AuditLogAuth,
		"audit_log_records": appCfg.AuditLogRecords,
	} {
		if !auditlog.ValidMode(mode) {
			return fmt.Errorf("%s: unknown mode %q (want all, db, log or off)", key, mode)
		}
	}
	if appCfg.StatWait <= 0 {
		return fmt.Errorf("dashboard_stat_wait must be positive")
	}
	if appCfg.SeedOwnerEmail != "" && appCfg.SeedOwnerTenant == "" {
		return fmt.Errorf("seed_owner_tenant is required when seed_owner_email is set")
	}
	if appCfg.SeedOwnerEmail != "" && appCfg.SeedOwnerPassword == "" && !appCfg.AllowTrustLogin {
		logger.Warn("seeded owner has no password and trust sign-in is disabled; it cannot sign in")
	}
	return nil
}
