package main

import (
	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/internal/store/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if err := postgres.Migrate(cfg.Database.DSN); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}
