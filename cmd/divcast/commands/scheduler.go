package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aakulov/divcast/internal/scheduler"
	"github.com/aakulov/divcast/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the job scheduler",
	Long: `Starts the scheduler with the daily pipeline job.

Jobs:
  forecast_pipeline - full scrape-and-forecast run, 7 AM daily

Example:
  go run ./cmd/divcast scheduler
  go run ./cmd/divcast scheduler --run-now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	// Flags
	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "run the pipeline job immediately on start")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== divcast Scheduler ===")

	d, err := setup(true)
	if err != nil {
		return err
	}
	defer d.close()

	sched := scheduler.New(d.log)

	job := jobs.NewPipelineJob(d.runner, d.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return fmt.Errorf("run job: %w", err)
		}
	}

	fmt.Println("\nScheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
