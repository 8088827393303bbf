package jobs

import (
	"context"
	"fmt"

	"github.com/aakulov/divcast/internal/pipeline"
	"github.com/aakulov/divcast/pkg/logger"
)

// PipelineJob runs the full scrape-and-forecast pipeline daily.
// Schedule: 7 AM, before the trading day starts.
type PipelineJob struct {
	runner *pipeline.Runner
	logger *logger.Logger
}

// NewPipelineJob creates a new pipeline job.
func NewPipelineJob(runner *pipeline.Runner, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		runner: runner,
		logger: log,
	}
}

// Name returns the job name.
func (j *PipelineJob) Name() string {
	return "forecast_pipeline"
}

// Schedule returns the cron schedule (7 AM daily, with seconds).
func (j *PipelineJob) Schedule() string {
	return "0 0 7 * * *"
}

// Run executes the pipeline.
func (j *PipelineJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled pipeline run")

	res, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"stocks":    res.Stocks,
		"records":   res.Records,
		"forecasts": res.Forecasts,
		"skipped":   res.Skipped,
		"failed":    res.Failed,
		"duration":  res.Duration,
	}).Info("Scheduled pipeline run completed")

	return nil
}
