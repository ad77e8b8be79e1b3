package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomsession-server/internal/app"
	"github.com/vovakirdan/roomsession-server/internal/config"
	applog "github.com/vovakirdan/roomsession-server/internal/log"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	serve := func(cmd *cobra.Command, _ []string) error {
		bootLog := applog.New("info", "console")

		cfg, path, err := config.Load(bootLog, configPath)
		if err != nil {
			return err
		}
		cfg.UpdateFrom(overrides)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		logger := applog.New(cfg.LogLevel, cfg.LogFormat)
		logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting roomsession server")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.New(&cfg, logger).Run(ctx); err != nil {
			logger.Error().Err(err).Msg("server exited with error")
			return err
		}
		logger.Info().Msg("server stopped")
		return nil
	}

	root := &cobra.Command{
		Use:          "roomsession-server",
		Short:        "Real-time room sessions over WebSocket",
		SilenceUsage: true,
		RunE:         serve,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE:  serve,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to config.yaml")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(serveCmd, versionCmd)
	return root
}
