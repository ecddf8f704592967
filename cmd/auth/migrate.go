package main

import (
	"fmt"

	"focus-server/internal/config"
	"focus-server/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(database.MigrateUp)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(database.MigrateDown)
		},
	})
	return cmd
}

func runMigration(step func(dsn string, logger *zap.Logger) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.DBDriver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the %s driver, DB_DRIVER is %q", config.DriverPostgres, cfg.DBDriver)
	}
	return step(cfg.PostgresDSN(), log.Named("Migrations"))
}
