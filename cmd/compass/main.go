// Package main implements the compass CLI: offline scoring, recommendations
// through the proxy, needs optimization and catalog inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"compass-backend/internal/shared/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Five-dimension training compass",
	Long:  "compass scores a five-dimension selection, asks the proxy service for a tailored training recommendation and rewrites contact-form needs.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return telemetry.Init(logLevel, "console")
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	catalogPath string
	proxyURL    string
	logLevel    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "Catalog file (YAML or JSON); defaults to the bundled catalog")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy-url", envOr("COMPASS_PROXY_URL", "http://localhost:3000"), "Base URL of the proxy service")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level")
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
	telemetry.Sync()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
