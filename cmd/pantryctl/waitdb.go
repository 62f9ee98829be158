package main

import (
	"fmt"
	"time"

	"pantry/internal/config"
	"pantry/internal/database"

	"github.com/spf13/cobra"
)

func newWaitForDBCmd() *cobra.Command {
	var (
		interval time.Duration
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait-for-db",
		Short: "Block until the database accepts connections",
		Long: `Pings the database at a fixed interval until it answers.
Without --timeout the command waits indefinitely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer closeDatabase(db)

			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			attempts, err := database.WaitForDB(cmd.Context(), sqlDB, interval, timeout)
			if err != nil {
				return fmt.Errorf("database unavailable after %d attempts: %w", attempts, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database available after %d attempt(s)\n", attempts)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Delay between connection attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits forever)")
	return cmd
}
