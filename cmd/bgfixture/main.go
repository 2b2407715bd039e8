package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bgfixture",
	Short: "Fake extension background for UI development and tests",
	Long: "bgfixture serves an in-memory stand-in for a content-blocking extension's " +
		"background page: subscriptions, filters, validation and change events, " +
		"shaped per page load by query parameters.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("seed", "", "YAML seed file (overrides FIXTURE_SEED_FILE)")
	rootCmd.PersistentFlags().String("params", "", "default fixture params as a query string (overrides FIXTURE_PARAMS)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(seedCmd)
}
