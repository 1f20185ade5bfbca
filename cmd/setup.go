package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reminis/internal/repositories"
	"github.com/desertthunder/reminis/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path. An existing file is left untouched.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlain("Set auth.api_key before using 'reminis auth'.\n")
	return nil
}

// SetupDatabase initializes the database, runs migrations and lists the keys already stored.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	keys, err := repositories.NewSQLiteStore(db).Keys(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Database ready at %s\n", shared.ExpandPath(config.Database.Path))
	if len(keys) == 0 {
		return r.writePlain("  No stored keys\n")
	}
	for _, key := range keys {
		r.writePlain("  %s\n", key)
	}
	return nil
}
