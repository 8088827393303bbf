package forecast

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aakulov/divcast/internal/contracts"
)

// Repository stores payment records (actuals, site forecasts and derived
// forecasts) in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Schema is the DDL for the payment records table. Applied by `divcast status --init`.
const Schema = `
CREATE SCHEMA IF NOT EXISTS dividends;
CREATE TABLE IF NOT EXISTS dividends.payment_records (
	id                BIGSERIAL PRIMARY KEY,
	ticker            TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	record_date       DATE,
	record_date_str   TEXT NOT NULL DEFAULT 'no data',
	announcement_date TEXT NOT NULL DEFAULT 'no data',
	dividend_value    DOUBLE PRECISION NOT NULL CHECK (dividend_value >= 0),
	period            TEXT NOT NULL DEFAULT '',
	source_kind       SMALLINT NOT NULL,
	year              INTEGER NOT NULL,
	quarter           SMALLINT NOT NULL DEFAULT 0,
	month             SMALLINT NOT NULL DEFAULT 0,
	strategy          TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (ticker, year, quarter, strategy, record_date_str)
);
CREATE INDEX IF NOT EXISTS payment_records_ticker_idx
	ON dividends.payment_records (ticker, year, quarter);
`

// Init applies the schema.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

const upsertQuery = `
	INSERT INTO dividends.payment_records
		(ticker, name, record_date, record_date_str, announcement_date,
		 dividend_value, period, source_kind, year, quarter, month, strategy)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (ticker, year, quarter, strategy, record_date_str)
	DO UPDATE SET
		name = EXCLUDED.name,
		record_date = EXCLUDED.record_date,
		announcement_date = EXCLUDED.announcement_date,
		dividend_value = EXCLUDED.dividend_value,
		period = EXCLUDED.period,
		month = EXCLUDED.month`

// SaveRecords upserts payment records in one batch.
func (r *Repository) SaveRecords(ctx context.Context, records []contracts.PaymentRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertQuery,
			rec.Ticker, rec.Name, nullableDate(rec.RecordDate), rec.RecordDateStr,
			rec.AnnouncementDate, rec.DividendValue, rec.Period,
			int16(rec.Source), rec.Year, rec.Quarter, rec.Month, string(rec.Strategy),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// DeleteDerived removes previously derived forecasts for a ticker before a
// fresh cascade run is stored.
func (r *Repository) DeleteDerived(ctx context.Context, ticker string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM dividends.payment_records WHERE ticker = $1 AND source_kind = $2`,
		ticker, int16(contracts.SourceDerivedForecast),
	)
	return err
}

const selectColumns = `
	SELECT ticker, name, record_date, record_date_str, announcement_date,
	       dividend_value, period, source_kind, year, quarter, month, strategy
	FROM dividends.payment_records`

// GetByTicker returns all records for a ticker ordered by date and period.
func (r *Repository) GetByTicker(ctx context.Context, ticker string) ([]contracts.PaymentRecord, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE ticker = $1
		ORDER BY year, quarter, record_date NULLS LAST, strategy`, ticker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetActuals returns the cleaned actual payment history for a ticker.
func (r *Repository) GetActuals(ctx context.Context, ticker string) ([]contracts.PaymentRecord, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE ticker = $1 AND source_kind = $2
		ORDER BY record_date NULLS LAST, year, quarter`,
		ticker, int16(contracts.SourceActual))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetSiteForecasts returns a ticker's site forecasts keyed by "{year}-{quarter}".
// Duplicate keys resolve last-write-wins in row order.
func (r *Repository) GetSiteForecasts(ctx context.Context, ticker string) (map[string]contracts.SiteForecast, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE ticker = $1 AND source_kind = $2
		ORDER BY year, quarter, record_date NULLS LAST`,
		ticker, int16(contracts.SourceSiteForecast))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	site := make(map[string]contracts.SiteForecast, len(records))
	for _, rec := range records {
		if rec.Quarter == 0 {
			continue
		}
		site[contracts.SiteKey(rec.Year, rec.Quarter)] = contracts.SiteForecast{
			Year:          rec.Year,
			Quarter:       rec.Quarter,
			RecordDate:    rec.RecordDate,
			DividendValue: rec.DividendValue,
		}
	}

	return site, nil
}

// ListTickers returns all tickers with stored records.
func (r *Repository) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ticker FROM dividends.payment_records ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}

	return tickers, rows.Err()
}

// CountByStrategy returns record counts grouped by strategy tag, used by the
// status command to surface gaps.
func (r *Repository) CountByStrategy(ctx context.Context) (map[contracts.StrategyTag]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT strategy, COUNT(*) FROM dividends.payment_records GROUP BY strategy`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[contracts.StrategyTag]int)
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		counts[contracts.StrategyTag(tag)] = n
	}

	return counts, rows.Err()
}

func scanRecords(rows pgx.Rows) ([]contracts.PaymentRecord, error) {
	var records []contracts.PaymentRecord
	for rows.Next() {
		var rec contracts.PaymentRecord
		var date *time.Time
		var source int16
		var strategy string
		if err := rows.Scan(
			&rec.Ticker, &rec.Name, &date, &rec.RecordDateStr, &rec.AnnouncementDate,
			&rec.DividendValue, &rec.Period, &source, &rec.Year, &rec.Quarter,
			&rec.Month, &strategy,
		); err != nil {
			return nil, err
		}
		if date != nil {
			rec.RecordDate = *date
		}
		rec.Source = contracts.SourceKind(source)
		rec.Strategy = contracts.StrategyTag(strategy)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
