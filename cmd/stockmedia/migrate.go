package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/stockmedia-backend/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create extensions, tables and indexes, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, err := db.NewPostgresService(cmd.Context(), log, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		defer pg.Close()

		if err := db.Migrate(pg.DB(), log); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info("Migrations applied")
		return nil
	},
}
