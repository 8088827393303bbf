package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aakulov/divcast/internal/contracts"
	"github.com/aakulov/divcast/internal/export"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [ticker]",
	Short: "Export stored records to CSV/JSON",
	Long: `Exports stored payment records to CSV and JSON files.

Without arguments all tickers are exported; with a ticker argument
only that ticker's records.

Example:
  go run ./cmd/divcast export
  go run ./cmd/divcast export SBER
  go run ./cmd/divcast export --format csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var exportFormat string

func init() {
	rootCmd.AddCommand(exportCmd)

	// Flags
	exportCmd.Flags().StringVar(&exportFormat, "format", "both", "output format (csv|json|both)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" && exportFormat != "both" {
		return fmt.Errorf("invalid format %q (valid: csv, json, both)", exportFormat)
	}

	d, err := setup(true)
	if err != nil {
		return err
	}
	defer d.close()

	ctx := cmd.Context()

	var records []contracts.PaymentRecord
	base := export.Timestamped("records", time.Now())

	if len(args) == 1 {
		ticker := args[0]
		records, err = d.repo.GetByTicker(ctx, ticker)
		if err != nil {
			return fmt.Errorf("load records for %s: %w", ticker, err)
		}
		base = export.Timestamped(ticker, time.Now())
	} else {
		tickers, err := d.repo.ListTickers(ctx)
		if err != nil {
			return fmt.Errorf("list tickers: %w", err)
		}
		for _, ticker := range tickers {
			recs, err := d.repo.GetByTicker(ctx, ticker)
			if err != nil {
				return fmt.Errorf("load records for %s: %w", ticker, err)
			}
			records = append(records, recs...)
		}
	}

	if len(records) == 0 {
		return fmt.Errorf("no records to export")
	}

	writer := export.NewWriter(d.cfg.Export.Dir, d.log.Zerolog())

	if exportFormat == "csv" || exportFormat == "both" {
		path, err := writer.WriteCSV(records, base)
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("CSV:  %s\n", path)
	}
	if exportFormat == "json" || exportFormat == "both" {
		path, err := writer.WriteJSON(records, base)
		if err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		fmt.Printf("JSON: %s\n", path)
	}

	fmt.Printf("Exported %d records\n", len(records))
	return nil
}
