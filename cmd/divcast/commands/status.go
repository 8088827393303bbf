package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aakulov/divcast/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and data status",
	Long: `Shows database health, stored ticker count and per-strategy
record counts.

With --init the schema is applied first.

Example:
  go run ./cmd/divcast status
  go run ./cmd/divcast status --init`,
	RunE: runStatus,
}

var statusInit bool

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().BoolVar(&statusInit, "init", false, "apply the database schema before reporting")
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== divcast Status ===")

	d, err := setup(true)
	if err != nil {
		return err
	}
	defer d.close()

	ctx := cmd.Context()

	if statusInit {
		if err := d.repo.Init(ctx); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		fmt.Println("Schema applied")
	}

	health, err := d.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	fmt.Println("\nDatabase")
	fmt.Printf("%-15s %10s\n", "Healthy:", fmt.Sprintf("%t", health.Healthy))
	fmt.Printf("%-15s %10s\n", "Response:", health.ResponseTime.Round(time.Microsecond).String())
	fmt.Printf("%-15s %7d/%2d\n", "Connections:", health.TotalConns, health.MaxConns)

	tickers, err := d.repo.ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("list tickers: %w", err)
	}

	counts, err := d.repo.CountByStrategy(ctx)
	if err != nil {
		return fmt.Errorf("count by strategy: %w", err)
	}

	fmt.Println("\nData")
	fmt.Printf("%-20s %10d\n", "Tickers:", len(tickers))

	tags := make([]string, 0, len(counts))
	total := 0
	for tag, n := range counts {
		tags = append(tags, string(tag))
		total += n
	}
	sort.Strings(tags)

	fmt.Printf("%-20s %10d\n", "Records:", total)
	for _, tag := range tags {
		fmt.Printf("  %-18s %10d\n", tag+":", counts[contracts.StrategyTag(tag)])
	}

	return nil
}
