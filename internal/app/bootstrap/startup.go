// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/lifecycle"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n))
	}
	if deps.Store == nil {
		return nil
	}

	hasher, err := authutil.NewHasher(appCfg.PasswordHasher)
	if err != nil {
		return err
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), logger, "bootstrap admin")
	defer cancel()
	_, err = ensureBootstrapAdmin(ctx, userstore.New(deps.Store.DB), hasher, appCfg.BootstrapAdminPassword, time.Now(), logger)
	return err
}

type accountSeeder interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u models.User) error
}

// ensureBootstrapAdmin creates the initial ADMIN when no account exists.
// Reports whether an account was created.
func ensureBootstrapAdmin(ctx context.Context, users accountSeeder, h authutil.Hasher, password string, now time.Time, logger *zap.Logger) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := h.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash bootstrap password: %w", err)
	}
	admin := lifecycle.BootstrapAdmin(hash, now.UnixMilli())
	if err := users.Create(ctx, admin); err != nil {
		// Another instance seeded the collection first.
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.Warn("created bootstrap admin account; change its password after signing in",
		zap.String("username", admin.Username))
	return true, nil
}
