package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lostfound/internal/config"
	"lostfound/internal/database"
	"lostfound/internal/logging"
)

var (
	verbose bool
	dbURL   string
)

var rootCmd = &cobra.Command{
	Use:   "lfctl",
	Short: "Operator tooling for the campus Lost & Found service",
	Long: `lfctl runs maintenance tasks against the Lost & Found database.

Available commands:
  create-admin  - Create an admin account or promote an existing user
  rescan        - Re-run keyword matching for active reports
  prune-orphans - Delete notifications whose reports no longer exist
  seed          - Insert demo users and reports`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbURL, "database-url", "", "Database DSN (default: DATABASE_URL)")

	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(rescanCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs: config, a logger and a migrated DB.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New(cfg.AppEnv, false); err != nil {
			return nil, err
		}
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &env{cfg: cfg, log: logger, db: db}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = e.log.Sync()
}
