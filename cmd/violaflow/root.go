package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/config"
	"github.com/AndrewDonelson/viola-flow/internal/app"
	"github.com/AndrewDonelson/viola-flow/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "violaflow",
	Short:         "Viola Flow keeps a library of chord sheets",
	Long:          `Viola Flow stores chord sheets, imports them from CifraClub and serves them to the web player.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (default $VIOLA_CONFIG)")
}

// Execute executes the root command.
// SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openApp loads configuration, initializes logging and wires the application.
// Commands that print to stdout keep their logs on stderr.
func openApp(ctx context.Context, quiet bool) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if quiet {
		cfg.Log.Console = "stderr"
		if cfg.Log.Level == "debug" {
			cfg.Log.Level = "info"
		}
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("Logger initialized", zap.String("level", cfg.Log.Level), zap.String("file", cfg.Log.OutputPath))

	return app.New(ctx, cfg, log)
}
