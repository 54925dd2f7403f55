package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/di"
	"backoffice/internal/shared/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	timeout time.Duration

	cfg    *config.Config
	appLog logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Arome Floral retail back office",
	Long: `Back-office panel for the Arome Floral shop: products, clients, orders,
invoices and users backed by a cache store, plus a dashboard and a change feed.

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		appLog = logger.New(cfg.Log, os.Stdout)
		logger.SetDefault(appLog)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for one-shot commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openContainer builds the container for a one-shot command, bounded by --timeout
// and interrupted by SIGINT/SIGTERM.
func openContainer(cmd *cobra.Command) (context.Context, *di.Container, func(), error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)

	container, err := di.NewContainer(ctx, cfg, appLog)
	if err != nil {
		cancel()
		stop()
		return nil, nil, nil, err
	}
	return ctx, container, func() {
		if err := container.Close(); err != nil {
			appLog.Errorf("Failed to close container: %v", err)
		}
		cancel()
		stop()
	}, nil
}
