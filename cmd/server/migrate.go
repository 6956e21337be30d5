package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.ServiceName, cfg.LogLevel)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		conn, err := db.Open(ctx, dbOptions(cfg))
		if err != nil {
			return err
		}
		defer db.Close(conn)

		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		logger.Info("migrate_ok")
		return nil
	},
}
