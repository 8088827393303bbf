package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long: `Runs the full pipeline: scrape the dividend site, normalize the
payment rows, run the forecast cascade per ticker, store the results
and write export files.

This command:
- Fetches the asset list from the main dividend table
- Fetches and parses every asset's payment history
- Classifies rows into actuals and site forecasts
- Projects future payments through the strategy cascade
- Persists everything and exports CSV/JSON

Example:
  go run ./cmd/divcast run
  go run ./cmd/divcast run --max-stocks 20 --years 5
  go run ./cmd/divcast run --no-db`,
	RunE: runPipeline,
}

var runNoDB bool

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().IntVar(&flagMaxStocks, "max-stocks", -1, "limit processed stocks (0 = no limit)")
	runCmd.Flags().IntVar(&flagYears, "years", -1, "forecast horizon in years")
	runCmd.Flags().IntVar(&flagHistoryYears, "history-years", -1, "trailing activity window in years")
	runCmd.Flags().BoolVar(&runNoDB, "no-db", false, "skip database persistence, export only")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== divcast Pipeline ===")

	d, err := setup(!runNoDB)
	if err != nil {
		return err
	}
	defer d.close()

	res, err := d.runner.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Println("\nPipeline completed")
	fmt.Printf("%-15s %10d\n", "Stocks:", res.Stocks)
	fmt.Printf("%-15s %10d\n", "Records:", res.Records)
	fmt.Printf("%-15s %10d\n", "Forecasts:", res.Forecasts)
	fmt.Printf("%-15s %10d\n", "Skipped:", res.Skipped)
	fmt.Printf("%-15s %10d\n", "Failed:", res.Failed)
	fmt.Printf("%-15s %10s\n", "Duration:", res.Duration.Round(time.Millisecond).String())
	if res.CSVPath != "" {
		fmt.Printf("\nExports:\n  %s\n  %s\n", res.CSVPath, res.JSONPath)
	}

	return nil
}
