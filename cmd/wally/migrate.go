package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/wally/config"
	"github.com/sagarc03/wally/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the comment store schema",
	Long: `Create the comments table (or collection) and its list index if they
are missing, then validate the schema. Running it again is a no-op.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database migration complete", "type", cfg.Database.Type, "table", cfg.Database.Tables.Comments)
	return nil
}
