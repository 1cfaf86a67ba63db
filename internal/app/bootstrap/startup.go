package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	userstore "github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/timeouts"
)

// Startup runs one-time initialization after backends are connected
// but before the HTTP handler is built. It seeds an account for every
// allow-listed admin email that does not have one yet, so admins can
// sign in on a fresh deployment.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if len(appCfg.AdminEmails) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	dir := userstore.NewDirectory(deps.Store, logger)
	for _, email := range appCfg.AdminEmails {
		u, err := dir.GetByEmail(ctx, email)
		if err == nil {
			// Allow-listed accounts must be able to sign in even if
			// they registered before being listed.
			if !u.IsApproved() {
				if err := dir.Approve(ctx, u.ID); err != nil {
					return fmt.Errorf("approve admin %s: %w", email, err)
				}
				logger.Info("approved existing admin account", zap.String("email", email))
			}
			continue
		}
		if !errors.Is(err, userstore.ErrNotFound) {
			return fmt.Errorf("look up admin %s: %w", email, err)
		}

		created, err := dir.Register(ctx, "Admin", "Administration", email, appCfg.AdminInitialPassword)
		if err != nil {
			return fmt.Errorf("create admin %s: %w", email, err)
		}
		if err := dir.Approve(ctx, created.ID); err != nil {
			return fmt.Errorf("approve admin %s: %w", email, err)
		}
		logger.Info("seeded admin account", zap.String("email", email))
	}

	return nil
}
