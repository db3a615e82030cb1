package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dropzone/internal/app"
	"dropzone/internal/config"
	"dropzone/pkg/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := serveCmd()
	rootCmd := &cobra.Command{
		Use:           "dropzone",
		Short:         "The Drop Zone storefront backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand serves HTTP.
		RunE: serve.RunE,
	}

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(seedCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer func() {
				if err := a.Close(context.Background()); err != nil {
					log.Error("error during shutdown", "error", err)
				}
			}()

			return a.Run(ctx)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo catalog into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			// Seeding is explicit here.
			cfg.SeedOnStart = false

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer a.Close(context.Background())

			res, err := a.Products.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if res.Seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", res.Count)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Products already seeded (%d)\n", res.Count)
			}
			return nil
		},
	}
}

func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(logger.Options{
		Service: "dropzone",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	return cfg, log, nil
}
