package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "divcast",
	Short: "Dividend forecast engine",
	Long: `divcast - dividend payment forecasting

Scrapes the dividend analytics site, cleans the payment history and
analyst forecasts, and projects future payments per ticker through a
priority cascade of forecasting strategies.

Usage:
  go run ./cmd/divcast [command]

Examples:
  go run ./cmd/divcast run
  go run ./cmd/divcast forecast
  go run ./cmd/divcast api
  go run ./cmd/divcast status --init`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
