package commands

import (
	"fmt"
	"time"

	"github.com/aakulov/divcast/internal/contracts"
	"github.com/aakulov/divcast/internal/export"
	"github.com/aakulov/divcast/internal/external/dohod"
	"github.com/aakulov/divcast/internal/forecast"
	"github.com/aakulov/divcast/internal/normalize"
	"github.com/aakulov/divcast/internal/pipeline"
	"github.com/aakulov/divcast/pkg/config"
	"github.com/aakulov/divcast/pkg/database"
	"github.com/aakulov/divcast/pkg/httputil"
	"github.com/aakulov/divcast/pkg/logger"
	"github.com/aakulov/divcast/pkg/redis"
)

// Forecast flag overrides shared by run and forecast; -1 means "use config".
var (
	flagYears        = -1
	flagHistoryYears = -1
	flagMaxStocks    = -1
)

// deps bundles the wired application components for one command run.
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	rdb    *redis.Client
	repo   *forecast.Repository
	runner *pipeline.Runner
}

// setup loads config and wires the pipeline. withDB controls whether a
// database connection is required; without it forecasts are not persisted.
func setup(withDB bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if flagYears >= 0 {
		cfg.Forecast.Years = flagYears
	}
	if flagHistoryYears > 0 {
		cfg.Forecast.HistoryYears = flagHistoryYears
	}
	if flagMaxStocks >= 0 {
		cfg.Dohod.MaxStocks = flagMaxStocks
	}

	log := logger.New(cfg)

	d := &deps{cfg: cfg, log: log}

	if withDB {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.repo = forecast.NewRepository(db.Pool)
		log.Info("Connected to database")
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	d.rdb = rdb

	httpClient := httputil.New(log).WithRateLimit(cfg.Dohod.RequestsPerSec)
	cache := redis.NewPageCache(rdb, "divcast", cfg.Dohod.PageCacheTTL)
	client := dohod.NewClient(httpClient, cache, cfg.Dohod.BaseURL, log.Zerolog())

	params := contracts.RunParams{
		CurrentYear:  time.Now().Year(),
		Years:        cfg.Forecast.Years,
		HistoryYears: cfg.Forecast.HistoryYears,
	}

	d.runner = pipeline.NewRunner(
		client,
		normalize.New(log.Zerolog()),
		forecast.NewCascade(params, log.Zerolog()),
		d.repo,
		export.NewWriter(cfg.Export.Dir, log.Zerolog()),
		params,
		cfg.Dohod.MaxStocks,
		log.Zerolog(),
	)

	return d, nil
}

func (d *deps) close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
