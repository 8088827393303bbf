package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Rerun the cascade from stored data",
	Long: `Reruns the forecast cascade for every stored ticker from the
persisted actuals and site forecasts, without touching the network.

Useful after changing the horizon or the history window: the scraped
data stays, only the derived forecasts are replaced.

Example:
  go run ./cmd/divcast forecast
  go run ./cmd/divcast forecast --years 5 --history-years 2`,
	RunE: runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)

	// Flags
	forecastCmd.Flags().IntVar(&flagYears, "years", -1, "forecast horizon in years")
	forecastCmd.Flags().IntVar(&flagHistoryYears, "history-years", -1, "trailing activity window in years")
}

func runForecast(cmd *cobra.Command, args []string) error {
	fmt.Println("=== divcast Forecast ===")

	d, err := setup(true)
	if err != nil {
		return err
	}
	defer d.close()

	res, err := d.runner.Reforecast(cmd.Context())
	if err != nil {
		return fmt.Errorf("reforecast: %w", err)
	}

	fmt.Println("\nForecast completed")
	fmt.Printf("%-15s %10d\n", "Tickers:", res.Stocks)
	fmt.Printf("%-15s %10d\n", "Forecasts:", res.Forecasts)
	fmt.Printf("%-15s %10d\n", "Skipped:", res.Skipped)
	fmt.Printf("%-15s %10d\n", "Failed:", res.Failed)
	fmt.Printf("%-15s %10s\n", "Duration:", res.Duration.Round(time.Millisecond).String())

	return nil
}
