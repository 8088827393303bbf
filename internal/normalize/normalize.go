// Package normalize turns raw scraped table cells into cleaned payment
// records the cascade can consume: parsed dates, parsed amounts, derived
// quarter/month/period fields, source classification and deduplication.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aakulov/divcast/internal/contracts"
	"github.com/aakulov/divcast/internal/external/dohod"
)

var (
	dateRe  = regexp.MustCompile(`(\d{2})[./-](\d{2})[./-](\d{4})`)
	yearRe  = regexp.MustCompile(`(\d{4})`)
	valueRe = regexp.MustCompile(`[^\d.,]`)

	// quarter markers seen in the source's period column: Q1, 1Q, 1кв, квартал 1
	quarterRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[qкК]\s*(\d)`),
		regexp.MustCompile(`(?i)(\d)\s*[qкК]`),
		regexp.MustCompile(`(?i)(\d)\s*кв`),
		regexp.MustCompile(`(?i)квартал\s*(\d)`),
	}
)

// forecastMarker is the source site's word for a projected payout.
const forecastMarker = "прогноз"

// ParseDate extracts a DD.MM.YYYY (or DD-MM-YYYY, DD/MM/YYYY) date from a
// cell. Returns false for "n/a", empty or unparseable input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "n/a" {
		return time.Time{}, false
	}

	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	t, err := time.Parse(contracts.DateLayout, m[1]+"."+m[2]+"."+m[3])
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// ParseDividendValue extracts a non-negative amount from a cell. Strips
// everything but digits and separators, accepts comma decimals. Unparseable
// input yields 0.
func ParseDividendValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "n/a" {
		return 0
	}

	s = valueRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", ".")
	if i := strings.Index(s, "."); i >= 0 {
		// keep only the first decimal point, later ones are thousand noise
		s = s[:i+1] + strings.ReplaceAll(s[i+1:], ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}

	return v
}

// ParseYear extracts the first 4-digit year from a cell, 0 when absent.
func ParseYear(s string) int {
	m := yearRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// ParseQuarterFromPeriod extracts a quarter number from a period label,
// 0 when no marker matches.
func ParseQuarterFromPeriod(period string) int {
	for _, re := range quarterRes {
		if m := re.FindStringSubmatch(period); m != nil {
			q, _ := strconv.Atoi(m[1])
			if q >= 1 && q <= 4 {
				return q
			}
		}
	}
	return 0
}

// Normalizer cleans raw scraped rows into payment records.
type Normalizer struct {
	log zerolog.Logger
}

// New creates a normalizer.
func New(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log.With().Str("component", "normalize").Logger()}
}

// Clean converts raw rows into deduplicated payment records. now anchors the
// actual-vs-forecast classification: a record date in the future means the
// site published a projection, not an observation.
func (n *Normalizer) Clean(rows []dohod.PaymentRow, now time.Time) []contracts.PaymentRecord {
	var records []contracts.PaymentRecord
	seen := make(map[string]bool)

	for _, row := range rows {
		rec, ok := n.cleanRow(row, now)
		if !ok {
			continue
		}

		// dedupe by (ticker, date string, value), first row wins
		key := rec.Ticker + "|" + rec.RecordDateStr + "|" + strconv.FormatFloat(rec.DividendValue, 'f', -1, 64)
		if seen[key] {
			continue
		}
		seen[key] = true

		records = append(records, rec)
	}

	n.log.Debug().
		Int("raw_rows", len(rows)).
		Int("records", len(records)).
		Msg("rows normalized")

	return records
}

// cleanRow builds one record; returns false for rows with no usable year.
func (n *Normalizer) cleanRow(row dohod.PaymentRow, now time.Time) (contracts.PaymentRecord, bool) {
	date, hasDate := ParseDate(row.RecordDate)
	value := ParseDividendValue(row.Value)

	year := ParseYear(row.Period)
	if year == 0 && hasDate {
		year = date.Year()
	}
	if year == 0 {
		return contracts.PaymentRecord{}, false
	}

	quarter := ParseQuarterFromPeriod(row.Period)
	if quarter == 0 && hasDate {
		quarter = (int(date.Month())-1)/3 + 1
	}

	forecast := row.ForecastHint ||
		strings.Contains(strings.ToLower(row.Value), forecastMarker) ||
		strings.Contains(row.Value, "(") ||
		(hasDate && date.After(now)) ||
		(!hasDate && value > 0)

	rec := contracts.PaymentRecord{
		Ticker:           row.Ticker,
		Name:             row.Name,
		AnnouncementDate: contracts.NoData,
		DividendValue:    value,
		Period:           contracts.PeriodLabel(year, quarter),
		Source:           contracts.SourceActual,
		Strategy:         contracts.TagActual,
		Year:             year,
		Quarter:          quarter,
		RecordDateStr:    contracts.NoData,
	}

	if hasDate {
		rec.RecordDate = date
		rec.RecordDateStr = date.Format(contracts.DateLayout)
		rec.Month = int(date.Month())
	}

	if ann, ok := ParseDate(row.AnnouncementDate); ok {
		rec.AnnouncementDate = ann.Format(contracts.DateLayout)
	}

	if forecast {
		rec.Source = contracts.SourceSiteForecast
		rec.Strategy = contracts.TagSiteRaw
	}

	return rec, true
}

// BuildSiteMap collects site-forecast records into the "{year}-{quarter}" map
// the cascade consumes. Duplicate keys resolve last-write-wins in input
// order; overwrites are logged.
func (n *Normalizer) BuildSiteMap(records []contracts.PaymentRecord) map[string]contracts.SiteForecast {
	site := make(map[string]contracts.SiteForecast)

	for _, rec := range records {
		if rec.Source != contracts.SourceSiteForecast || rec.Quarter == 0 {
			continue
		}

		key := contracts.SiteKey(rec.Year, rec.Quarter)
		if _, exists := site[key]; exists {
			n.log.Debug().
				Str("ticker", rec.Ticker).
				Str("key", key).
				Msg("duplicate site forecast, keeping last")
		}

		site[key] = contracts.SiteForecast{
			Year:          rec.Year,
			Quarter:       rec.Quarter,
			RecordDate:    rec.RecordDate,
			DividendValue: rec.DividendValue,
		}
	}

	return site
}

// SplitActuals returns the actual payment history from a cleaned batch.
func SplitActuals(records []contracts.PaymentRecord) []contracts.PaymentRecord {
	var actuals []contracts.PaymentRecord
	for _, rec := range records {
		if rec.Source == contracts.SourceActual {
			actuals = append(actuals, rec)
		}
	}
	return actuals
}
