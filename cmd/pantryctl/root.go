package main

import (
	"context"
	"fmt"

	"pantry/internal/bootstrap"
	"pantry/internal/config"
	"pantry/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pantryctl",
		Short:         "Operational commands for the Pantry API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newWaitForDBCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newCreateSuperuserCmd())
	root.AddCommand(newSeedCmd())
	return root
}

// openDatabase loads configuration and returns a database that has answered a ping.
func openDatabase(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := bootstrap.WaitForDatabase(ctx, db, cfg); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
