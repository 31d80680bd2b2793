package migrate

import (
	"context"
	"fmt"

	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/db"
	"github.com/delizzia/pos-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations when running in dev with auto-migrate enabled,
// or whenever the embedded sqlite driver is selected.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate || (!cfg.App.IsDev() && !cfg.DB.IsSQLite()) {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "driver": cfg.DB.Driver})
	logg.Info(ctx, "migrate.autorun.start")

	if err := Run(ctx, sqlDB, Dialect(cfg.DB.Driver), DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrate.autorun.complete")
	return nil
}
