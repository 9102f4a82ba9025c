package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/goserg/todoserver/internal/config"
	"github.com/goserg/todoserver/internal/migrate"
	"github.com/goserg/todoserver/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return oops.Code("CONFIG_INVALID").With("path", configFile).Wrap(err)
			}
			db, err := storage.Open(cfg.Database.File)
			if err != nil {
				return oops.Code("MIGRATION_FAILED").With("file", cfg.Database.File).Wrap(err)
			}
			defer db.Close()

			version, dirty, err := migrate.Version(db)
			if err != nil {
				return oops.Code("MIGRATION_FAILED").Wrap(err)
			}
			cmd.Printf("schema version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}
