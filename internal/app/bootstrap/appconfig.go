// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/hrms/internal/app/system/appmeta"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (HRMS_*), configuration
// files, or command-line flags, loaded in LoadConfig. Framework-level
// settings (ports, TLS, log level) live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // secret for signing session cookies
	SessionName   string        // cookie name (default: hrms-session)
	SessionDomain string        // cookie domain (blank means current host)
	SessionMaxAge time.Duration // cookie lifetime

	// Application metadata (role lists, tenant label, add-ons)
	Meta appmeta.Metadata

	// Fetch cache
	FetchCacheSize int
	FetchCacheTTL  time.Duration

	// StatWait bounds how long the dashboard waits for its stat cards.
	StatWait time.Duration

	// Audit logging modes: all, db, log, off
	AuditLogAuth    string
	AuditLogRecords string

	// Sign-in
	AllowTrustLogin bool // email-only sign-in for trust users
	LoginIPBurst    int
	LoginEmailBurst int

	// Owner bootstrap
	SeedOwnerEmail    string
	SeedOwnerPassword string
	SeedOwnerTenant   string
}
