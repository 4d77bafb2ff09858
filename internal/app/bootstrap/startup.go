// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// HRMS_TIMEOUT_* environment values win over the config file.
	timeouts.Configure(timeouts.Config{StatWait: appCfg.StatWait})
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}
	logger.Info("handler timeouts", zap.Any("timeouts", timeouts.Current()))

	return ensureOwner(ctx, deps, appCfg, logger)
}

// ensureOwner creates the configured owner account, or refreshes its roles
// and password when it already exists. Without seed_owner_email it does
// nothing.
func ensureOwner(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.SeedOwnerEmail == "" {
		return nil
	}

	u := models.User{
		TenantID:   appCfg.SeedOwnerTenant,
		Email:      appCfg.SeedOwnerEmail,
		FirstName:  "Owner",
		Roles:      append([]string(nil), appCfg.Meta.OwnerRoles...),
		AuthMethod: models.AuthMethodTrust,
	}
	if appCfg.SeedOwnerPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.SeedOwnerPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash owner password: %w", err)
		}
		u.PasswordHash = string(hash)
		u.AuthMethod = models.AuthMethodPassword
	}

	got, created, err := userstore.New(deps.MongoDatabase).EnsureUser(ctx, u)
	if err != nil {
		logger.Error("owner bootstrap failed", zap.String("email", u.Email), zap.Error(err))
		return fmt.Errorf("ensure owner: %w", err)
	}
	if created {
		logger.Info("created owner account", zap.String("email", got.Email), zap.String("tenant_id", got.TenantID))
	} else {
		logger.Info("refreshed owner account", zap.String("email", got.Email), zap.String("tenant_id", got.TenantID))
	}
	return nil
}
