package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shopzone-backend/pkg/config"
	"github.com/angelmondragon/shopzone-backend/pkg/db"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
)

// AutoMigrate applies pending migrations during API startup. It is a no-op
// unless the app runs in dev mode with the auto-migrate flag on; staging and
// production roll schema changes out through the migrate CLI instead.
func AutoMigrate(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	conn, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql handle: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"dir": MigrationsDir, "env": cfg.App.Env})
	logg.Info(ctx, "applying pending schema migrations on boot")

	if err := Apply(ctx, conn, MigrationsDir, "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	logg.Info(ctx, "schema is up to date")
	return nil
}
