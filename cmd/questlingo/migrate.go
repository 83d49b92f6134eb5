package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/questlingo/backend/internal/config"
	"github.com/questlingo/backend/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrationsDir string

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "migrations directory (default: ./migrations)")

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				if steps <= 0 {
					return errors.New("--steps must be positive")
				}
				return m.Steps(-steps)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(m *migrate.Migrate) error {
					return m.Up()
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := connectDB(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := newMigrator(db, migrationsDir)
	if err != nil {
		return err
	}

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Logger.Error("Migration failed", zap.Error(err))
		return err
	}
	logger.Logger.Info("Migration finished")
	return nil
}
