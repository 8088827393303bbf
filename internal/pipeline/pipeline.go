// Package pipeline orchestrates the full run: scrape the dividend site,
// normalize the rows, run the forecast cascade per ticker, persist the
// results and write export files.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aakulov/divcast/internal/contracts"
	"github.com/aakulov/divcast/internal/export"
	"github.com/aakulov/divcast/internal/external/dohod"
	"github.com/aakulov/divcast/internal/forecast"
	"github.com/aakulov/divcast/internal/normalize"
)

// Runner wires the pipeline stages together. repo and writer are optional;
// a nil repo skips persistence, a nil writer skips file export.
type Runner struct {
	client     *dohod.Client
	normalizer *normalize.Normalizer
	cascade    *forecast.Cascade
	repo       *forecast.Repository
	writer     *export.Writer
	params     contracts.RunParams
	maxStocks  int
	log        zerolog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(
	client *dohod.Client,
	normalizer *normalize.Normalizer,
	cascade *forecast.Cascade,
	repo *forecast.Repository,
	writer *export.Writer,
	params contracts.RunParams,
	maxStocks int,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		client:     client,
		normalizer: normalizer,
		cascade:    cascade,
		repo:       repo,
		writer:     writer,
		params:     params,
		maxStocks:  maxStocks,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// Result summarizes one pipeline run.
type Result struct {
	Stocks    int
	Records   int
	Forecasts int
	Skipped   int
	Failed    int
	CSVPath   string
	JSONPath  string
	Duration  time.Duration
}

// Run executes the full pipeline. Per-ticker failures are logged and
// counted; they never abort the batch.
func (p *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	now := time.Now()

	p.log.Info().
		Int("current_year", p.params.CurrentYear).
		Int("years", p.params.Years).
		Int("history_years", p.params.HistoryYears).
		Msg("pipeline run started")

	stocks, err := p.client.FetchStockList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch stock list: %w", err)
	}
	if p.maxStocks > 0 && len(stocks) > p.maxStocks {
		stocks = stocks[:p.maxStocks]
	}

	res := &Result{Stocks: len(stocks)}
	var all []contracts.PaymentRecord

	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, skips, err := p.processStock(ctx, stock, now)
		if err != nil {
			res.Failed++
			p.log.Error().Err(err).Str("ticker", stock.Ticker).Msg("stock processing failed")
			continue
		}

		res.Records += len(records)
		res.Skipped += len(skips)
		for _, rec := range records {
			if rec.Source == contracts.SourceDerivedForecast {
				res.Forecasts++
			}
		}
		all = append(all, records...)
	}

	if p.writer != nil && len(all) > 0 {
		base := export.Timestamped("forecasts", now)
		if res.CSVPath, err = p.writer.WriteCSV(all, base); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
		if res.JSONPath, err = p.writer.WriteJSON(all, base); err != nil {
			return nil, fmt.Errorf("write json: %w", err)
		}
	}

	res.Duration = time.Since(start)
	p.log.Info().
		Int("stocks", res.Stocks).
		Int("records", res.Records).
		Int("forecasts", res.Forecasts).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("pipeline run completed")

	return res, nil
}

// processStock scrapes, normalizes and forecasts one ticker, then persists
// the combined record set.
func (p *Runner) processStock(ctx context.Context, stock dohod.Stock, now time.Time) ([]contracts.PaymentRecord, []forecast.SkipEvent, error) {
	rows, err := p.client.FetchPayments(ctx, stock)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch payments: %w", err)
	}

	cleaned := p.normalizer.Clean(rows, now)
	actuals := normalize.SplitActuals(cleaned)
	site := p.normalizer.BuildSiteMap(cleaned)

	derived, skips := p.cascade.Run(stock.Ticker, stock.Name, actuals, site)

	records := append(cleaned, derived...)

	if p.repo != nil {
		if err := p.repo.DeleteDerived(ctx, stock.Ticker); err != nil {
			return nil, nil, fmt.Errorf("delete derived: %w", err)
		}
		if err := p.repo.SaveRecords(ctx, records); err != nil {
			return nil, nil, fmt.Errorf("save records: %w", err)
		}
	}

	p.log.Debug().
		Str("ticker", stock.Ticker).
		Int("raw_rows", len(rows)).
		Int("actuals", len(actuals)).
		Int("site_forecasts", len(site)).
		Int("derived", len(derived)).
		Msg("stock processed")

	return records, skips, nil
}

// Reforecast reruns the cascade for every stored ticker from persisted
// actuals and site forecasts, without touching the network.
func (p *Runner) Reforecast(ctx context.Context) (*Result, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("reforecast requires a database")
	}

	start := time.Now()

	tickers, err := p.repo.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}

	res := &Result{Stocks: len(tickers)}
	var all []contracts.PaymentRecord

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		actuals, err := p.repo.GetActuals(ctx, ticker)
		if err != nil {
			res.Failed++
			p.log.Error().Err(err).Str("ticker", ticker).Msg("load actuals failed")
			continue
		}
		site, err := p.repo.GetSiteForecasts(ctx, ticker)
		if err != nil {
			res.Failed++
			p.log.Error().Err(err).Str("ticker", ticker).Msg("load site forecasts failed")
			continue
		}

		name := ""
		if len(actuals) > 0 {
			name = actuals[0].Name
		}

		derived, skips := p.cascade.Run(ticker, name, actuals, site)
		res.Records += len(derived)
		res.Forecasts += len(derived)
		res.Skipped += len(skips)

		if err := p.repo.DeleteDerived(ctx, ticker); err != nil {
			return nil, fmt.Errorf("delete derived for %s: %w", ticker, err)
		}
		if err := p.repo.SaveRecords(ctx, derived); err != nil {
			return nil, fmt.Errorf("save records for %s: %w", ticker, err)
		}

		all = append(all, derived...)
	}

	if p.writer != nil && len(all) > 0 {
		base := export.Timestamped("forecasts", time.Now())
		if res.CSVPath, err = p.writer.WriteCSV(all, base); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
		if res.JSONPath, err = p.writer.WriteJSON(all, base); err != nil {
			return nil, fmt.Errorf("write json: %w", err)
		}
	}

	res.Duration = time.Since(start)
	p.log.Info().
		Int("tickers", res.Stocks).
		Int("forecasts", res.Forecasts).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("reforecast completed")

	return res, nil
}
