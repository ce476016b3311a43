// Package cli implements retention-cli, the command line front end for
// migrations, seeding and the retention and marketing reports.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/jengzang/retention-backend-go/internal/app"
	"github.com/jengzang/retention-backend-go/internal/config"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func Run() ExitCode {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "retention-cli",
		Short:        "Repurchase retention and TV program scoring reports.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: sqlite, duckdb, postgres, mysql (env: DB_DRIVER)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database DSN (env: DB_DSN)")
	rootCmd.PersistentFlags().String("dashboard", "", "dashboard YAML path (env: DASHBOARD_CONFIG)")

	rootCmd.AddCommand(
		NewMigrateCmd().Command(),
		NewSeedCmd().Command(),
		NewRetentionCmd().Command(),
		NewMarketingCmd().Command(),
		NewTokenCmd().Command(),
	)

	return rootCmd
}

// loadConfig reads the environment and applies persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg := config.Load()

	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	overrides := map[string]*string{
		"db-driver": &cfg.DBDriver,
		"db-dsn":    &cfg.DBDSN,
		"dashboard": &cfg.DashboardConfig,
	}
	for name, target := range overrides {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*target = v
	}

	return cfg, newLogger(cmd.ErrOrStderr(), verbose || cfg.LogVerbose), nil
}

// openApp loads the configuration and wires the application
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, log)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
