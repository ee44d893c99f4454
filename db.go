package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/daaqui/joyas-bot/database"
	"github.com/daaqui/joyas-bot/internal/catalog"
	"github.com/daaqui/joyas-bot/internal/config"
	"github.com/daaqui/joyas-bot/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openMigrated(cfg, log)
			if err != nil {
				return err
			}
			closeDB(db, log)
			fmt.Fprintln(cmd.OutOrStdout(), "migrations completed")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog products from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := catalog.LoadFile(file)
			if err != nil {
				return err
			}

			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openMigrated(cfg, log)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			n, err := catalog.Seed(cmd.Context(), storage.NewDatabaseStore(db), products)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products from %s\n", n, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "catalog.yaml", "catalog YAML file")
	return cmd
}

// openMigrated connects and brings the schema up to date.
func openMigrated(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("running database migrations")
	if err := storage.AutoMigrate(db); err != nil {
		closeDB(db, log)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
