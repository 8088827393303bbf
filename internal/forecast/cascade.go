package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aakulov/divcast/internal/contracts"
)

// SkipEvent is a structured record of a candidate forecast that could not be
// constructed. Skips never abort the ticker or the batch.
type SkipEvent struct {
	Ticker   string                `json:"ticker"`
	Year     int                   `json:"year"`
	Quarter  int                   `json:"quarter"`
	Strategy contracts.StrategyTag `json:"strategy"`
	Reason   string                `json:"reason"`
}

// Cascade selects among the forecasting strategies per ticker, in strict
// priority order, and materializes future payment events with provenance.
type Cascade struct {
	params contracts.RunParams
	log    zerolog.Logger
}

// NewCascade creates a new cascade controller.
func NewCascade(params contracts.RunParams, log zerolog.Logger) *Cascade {
	return &Cascade{
		params: params,
		log:    log.With().Str("component", "forecast.cascade").Logger(),
	}
}

// run-scoped state for one ticker pass.
type run struct {
	ticker  string
	name    string
	out     []contracts.PaymentRecord
	emitted map[string]bool
	skips   []SkipEvent
}

// Run executes the cascade for one ticker. history holds cleaned ACTUAL
// records; site maps "{year}-{quarter}" to site forecasts. The returned
// records are all SourceDerivedForecast, in deterministic order, with no
// duplicate (year, quarter) key.
func (c *Cascade) Run(ticker, name string, history []contracts.PaymentRecord, site map[string]contracts.SiteForecast) ([]contracts.PaymentRecord, []SkipEvent) {
	r := &run{
		ticker:  ticker,
		name:    name,
		emitted: make(map[string]bool),
	}

	// Step 1: site forecasts for the current year are always injected first,
	// even for tickers that fall into the critical scenario below.
	c.injectSite(r, site, true)

	// Step 2: critical scenario is terminal.
	if ApplyCriticalScenario(history, site, c.params) {
		c.zeroSweep(r, contracts.TagCriticalInactive)
		c.logDone(r, "critical scenario")
		return r.out, r.skips
	}

	// Step 3: future-year site forecasts, only when the site predicts any
	// payout at all.
	if siteTotal(site) > 0 {
		c.injectSite(r, site, false)
	}

	hist := BuildHistory(history)

	// Step 4: per-quarter history.
	c.applyQuarterly(r, hist, site)

	// Steps 5/6 are fallbacks: they only run when nothing has been produced
	// by the earlier steps for this ticker.
	if len(r.out) == 0 {
		c.applyDates(r, hist, site)
	}
	if len(r.out) == 0 && len(hist.All) > 0 {
		c.applyAnnual(r, hist, site)
	}

	// Step 7: emergency fallback when there is no data of any kind.
	if len(r.out) == 0 {
		c.zeroSweep(r, contracts.TagEmergencyFallback)
		c.logDone(r, "emergency fallback")
		return r.out, r.skips
	}

	c.logDone(r, "cascade")
	return r.out, r.skips
}

// futureYears returns the forecast years (CurrentYear, CurrentYear+Years].
func (c *Cascade) futureYears() []int {
	years := make([]int, 0, c.params.Years)
	for y := c.params.CurrentYear + 1; y <= c.params.CurrentYear+c.params.Years; y++ {
		years = append(years, y)
	}
	return years
}

// sortedSite returns site forecasts ordered by (year, quarter).
func sortedSite(site map[string]contracts.SiteForecast) []contracts.SiteForecast {
	entries := make([]contracts.SiteForecast, 0, len(site))
	for _, f := range site {
		entries = append(entries, f)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Year != entries[j].Year {
			return entries[i].Year < entries[j].Year
		}
		return entries[i].Quarter < entries[j].Quarter
	})
	return entries
}

// injectSite emits site forecasts as derived records: current-year entries
// when current is true (tag SITE_CURRENT), in-horizon future entries
// otherwise (tag SITE_FUTURE). An entry without a record date cannot be
// injected as-is; it is skipped here so a history strategy can later pair
// its value with a typical date (tag SITE_DERIVED).
func (c *Cascade) injectSite(r *run, site map[string]contracts.SiteForecast, current bool) {
	for _, f := range sortedSite(site) {
		tag := contracts.TagSiteFuture
		if current {
			if f.Year != c.params.CurrentYear {
				continue
			}
			tag = contracts.TagSiteCurrent
		} else if f.Year <= c.params.CurrentYear || f.Year > c.params.CurrentYear+c.params.Years {
			continue
		}

		if f.RecordDate.IsZero() {
			c.skip(r, f.Year, f.Quarter, tag,
				fmt.Errorf("%w: site forecast has no record date", ErrConstruction))
			continue
		}
		c.emit(r, f.RecordDate, f.DividendValue, f.Year, f.Quarter, tag)
	}
}

// zeroSweep emits zero-value forecasts at the standard quarterly dates for
// the whole horizon. Used by both terminal strategies.
func (c *Cascade) zeroSweep(r *run, tag contracts.StrategyTag) {
	for q := 1; q <= 4; q++ {
		for _, year := range c.futureYears() {
			date, err := StandardQuarterDate(year, q)
			if err != nil {
				c.skip(r, year, q, tag, err)
				continue
			}
			c.emit(r, date, 0, year, q, tag)
		}
	}
}

// applyQuarterly fills future years from per-quarter history, deferring to
// site forecasts for exact (year, quarter) matches.
func (c *Cascade) applyQuarterly(r *run, hist TickerHistory, site map[string]contracts.SiteForecast) {
	for _, p := range AggregateQuarters(hist) {
		c.log.Debug().
			Str("ticker", r.ticker).
			Int("quarter", p.Quarter).
			Int("month", p.Month).
			Int("day", p.Day).
			Float64("avg_dividend", p.AvgDividend).
			Msg("quarter profile")

		for _, year := range c.futureYears() {
			if r.emitted[contracts.SiteKey(year, p.Quarter)] {
				continue
			}
			c.emitSlot(r, site, year, p.Quarter, p.Month, p.Day, p.AvgDividend, contracts.TagQuarterlyHistory)
		}
	}
}

// applyDates fills future years from exact historical payment dates. The
// first date group within a quarter wins; later groups for the same period
// are deduplicated by key.
func (c *Cascade) applyDates(r *run, hist TickerHistory, site map[string]contracts.SiteForecast) {
	for _, p := range AggregateDates(hist) {
		for _, year := range c.futureYears() {
			if r.emitted[contracts.SiteKey(year, p.Quarter)] {
				continue
			}
			c.emitSlot(r, site, year, p.Quarter, p.Month, p.Day, p.AvgDividend, contracts.TagDateHistory)
		}
	}
}

// applyAnnual reuses the single annual average for all four quarters at the
// standard dates.
func (c *Cascade) applyAnnual(r *run, hist TickerHistory, site map[string]contracts.SiteForecast) {
	avg, ok := AggregateAnnual(hist)
	if !ok {
		return
	}

	for q := 1; q <= 4; q++ {
		std := standardQuarterDates[q-1]
		for _, year := range c.futureYears() {
			if r.emitted[contracts.SiteKey(year, q)] {
				continue
			}
			c.emitSlot(r, site, year, q, std.Month, std.Day, avg, contracts.TagAnnualHistory)
		}
	}
}

// emitSlot fills one (year, quarter) slot: a site forecast for that exact
// key overrides the synthesized value and is tagged SITE_DERIVED; otherwise
// the aggregated amount is paired with the typical (month, day).
func (c *Cascade) emitSlot(r *run, site map[string]contracts.SiteForecast, year, quarter, month, day int, avg float64, tag contracts.StrategyTag) {
	if sf, ok := site[contracts.SiteKey(year, quarter)]; ok {
		date := sf.RecordDate
		if date.IsZero() {
			var err error
			date, err = SafeDate(year, month, day)
			if err != nil {
				c.skip(r, year, quarter, contracts.TagSiteDerived, err)
				return
			}
		}
		c.emit(r, date, sf.DividendValue, year, quarter, contracts.TagSiteDerived)
		return
	}

	date, err := SafeDate(year, month, day)
	if err != nil {
		c.skip(r, year, quarter, tag, err)
		return
	}
	c.emit(r, date, avg, year, quarter, tag)
}

// emit appends one derived forecast record and marks its period key.
func (c *Cascade) emit(r *run, date time.Time, value float64, year, quarter int, tag contracts.StrategyTag) {
	if value < 0 {
		c.skip(r, year, quarter, tag, fmt.Errorf("%w: negative dividend %f", ErrValidation, value))
		return
	}

	rec := contracts.PaymentRecord{
		Ticker:           r.ticker,
		Name:             r.name,
		RecordDate:       date,
		RecordDateStr:    contracts.NoData,
		AnnouncementDate: contracts.NoData,
		DividendValue:    value,
		Period:           contracts.PeriodLabel(year, quarter),
		Source:           contracts.SourceDerivedForecast,
		Year:             year,
		Quarter:          quarter,
		Strategy:         tag,
	}
	if !date.IsZero() {
		rec.RecordDateStr = date.Format(contracts.DateLayout)
		rec.Month = int(date.Month())
	}

	r.out = append(r.out, rec)
	r.emitted[contracts.SiteKey(year, quarter)] = true
}

// skip records one skipped candidate and logs it; processing continues.
func (c *Cascade) skip(r *run, year, quarter int, tag contracts.StrategyTag, err error) {
	event := SkipEvent{
		Ticker:   r.ticker,
		Year:     year,
		Quarter:  quarter,
		Strategy: tag,
		Reason:   err.Error(),
	}
	r.skips = append(r.skips, event)

	c.log.Warn().
		Str("ticker", r.ticker).
		Int("year", year).
		Int("quarter", quarter).
		Str("strategy", string(tag)).
		Err(err).
		Msg("forecast record skipped")
}

func (c *Cascade) logDone(r *run, path string) {
	c.log.Info().
		Str("ticker", r.ticker).
		Str("path", path).
		Int("records", len(r.out)).
		Int("skipped", len(r.skips)).
		Msg("cascade completed")
}
