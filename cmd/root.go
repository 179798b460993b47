// Package cmd implements the CLI commands for shelfpipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Persistent flag variables.
var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "shelfpipe",
	Short: "Turn storefront listing pages into a product spreadsheet",
	Long: `shelfpipe scrapes product-listing pages, has an LLM extract the products
on each page, caches every intermediate artifact, and writes one summary table
of all products across the run.

Usage:
  shelfpipe run <url>... [flags]
  shelfpipe discover <url> [flags]`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./shelfpipe.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log_level", "info", "Log level: debug, info, warn or error")
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
