// Package cli implements the backoffice admin command line.
package cli

import (
	"context"
	"fmt"

	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Administer the restaurant back-office database",
	Long: `Administrative commands for the back-office service: schema migration,
role seeding, bootstrapping the first admin account and running the dashboard
or the due-debt scan without the HTTP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "configs/.env", "Path to the .env file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// env holds what every subcommand needs after connecting.
type env struct {
	cfg      *config.Config
	db       *gorm.DB
	services *app.Services
}

func connect() (*env, error) {
	cfg := config.Load(envFile)
	db, err := database.NewConnection(cfg.Database.DSN(), cfg.App.Debug)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, db: db, services: app.NewServices(db, cfg, nil)}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
