package main

import (
	"fmt"

	"github.com/phrazzld/skincare-api/internal/config"
	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "Postgres URL (overrides store.database_url)")
	rootCmd.AddCommand(migrateCmd)
}

var migrateDatabaseURL string

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|reset|status|version]",
	Short:     "Manage the Postgres task store schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "reset", "status", "version"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	databaseURL := migrateDatabaseURL
	if databaseURL == "" {
		store, err := config.LoadStore()
		if err != nil {
			return fmt.Errorf("failed to load store configuration: %w", err)
		}
		databaseURL = store.DatabaseURL
	}
	if databaseURL == "" {
		return fmt.Errorf("database URL is required: set --database-url or %s_STORE_DATABASE_URL", config.EnvPrefix)
	}

	log, err := logger.Setup(config.ServerConfig{LogLevel: "info"})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx := cmd.Context()
	db, err := postgres.Open(ctx, databaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	return postgres.Migrate(ctx, db, command, log)
}
