package forecast

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakulov/divcast/internal/contracts"
)

func newTestCascade(params contracts.RunParams) *Cascade {
	return NewCascade(params, zerolog.Nop())
}

var testParams = contracts.RunParams{CurrentYear: 2024, Years: 2, HistoryYears: 3}

// assertZeroSweep checks the shared shape of the two terminal strategies:
// 4 * years zero-value records at the standard quarterly dates.
func assertZeroSweep(t *testing.T, out []contracts.PaymentRecord, tag contracts.StrategyTag) {
	t.Helper()

	require.Len(t, out, 4*testParams.Years)

	wantMonths := map[int]time.Month{1: time.March, 2: time.June, 3: time.September, 4: time.December}
	for _, rec := range out {
		assert.Equal(t, tag, rec.Strategy)
		assert.Equal(t, 0.0, rec.DividendValue)
		assert.Equal(t, contracts.SourceDerivedForecast, rec.Source)
		assert.Greater(t, rec.Year, testParams.CurrentYear)
		assert.LessOrEqual(t, rec.Year, testParams.CurrentYear+testParams.Years)
		assert.Equal(t, wantMonths[rec.Quarter], rec.RecordDate.Month())
		assert.Equal(t, 15, rec.RecordDate.Day())
		assert.Equal(t, rec.Year, rec.RecordDate.Year())
	}
}

func TestCascade_CriticalScenario(t *testing.T) {
	c := newTestCascade(testParams)

	out, skips := c.Run("X", "Test Co", nil, nil)

	assertZeroSweep(t, out, contracts.TagCriticalInactive)
	assert.Empty(t, skips)
}

func TestCascade_EmergencyFallbackShape(t *testing.T) {
	c := newTestCascade(testParams)
	r := &run{ticker: "X", emitted: make(map[string]bool)}

	c.zeroSweep(r, contracts.TagEmergencyFallback)

	assertZeroSweep(t, r.out, contracts.TagEmergencyFallback)

	// numerically identical to the critical sweep, only the tag differs
	critical, _ := c.Run("X", "Test Co", nil, nil)
	require.Len(t, r.out, len(critical))
	for i := range r.out {
		assert.Equal(t, critical[i].Year, r.out[i].Year)
		assert.Equal(t, critical[i].Quarter, r.out[i].Quarter)
		assert.Equal(t, critical[i].RecordDate, r.out[i].RecordDate)
		assert.Equal(t, critical[i].DividendValue, r.out[i].DividendValue)
		assert.NotEqual(t, critical[i].Strategy, r.out[i].Strategy)
	}
}

func TestCascade_CriticalKeepsCurrentYearSiteForecast(t *testing.T) {
	c := newTestCascade(testParams)

	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2024, 2): {Year: 2024, Quarter: 2, RecordDate: day(2024, 6, 20), DividendValue: 3.0},
	}

	out, _ := c.Run("X", "Test Co", nil, site)

	// current-year injection runs before the critical check
	require.Len(t, out, 1+4*testParams.Years)
	assert.Equal(t, contracts.TagSiteCurrent, out[0].Strategy)
	assert.Equal(t, 3.0, out[0].DividendValue)
	assert.Equal(t, 2024, out[0].Year)
	assertZeroSweep(t, out[1:], contracts.TagCriticalInactive)
}

func TestCascade_QuarterlyHistory(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	}

	out, skips := c.Run("X", "Test Co", history, nil)

	require.Len(t, out, 2)
	assert.Empty(t, skips)

	first, second := out[0], out[1]
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 2, first.Quarter)
	assert.Equal(t, 5.5, first.DividendValue)
	assert.Equal(t, day(2025, 6, 15), first.RecordDate)
	assert.Equal(t, contracts.TagQuarterlyHistory, first.Strategy)
	assert.Equal(t, "Q2 2025", first.Period)

	assert.Equal(t, 2026, second.Year)
	assert.Equal(t, 2, second.Quarter)
	assert.Equal(t, 5.5, second.DividendValue)
	assert.Equal(t, day(2026, 6, 15), second.RecordDate)
	assert.Equal(t, contracts.TagQuarterlyHistory, second.Strategy)
}

func TestCascade_SiteDerivedOverridesQuarterly(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	}
	// undated site forecast: cannot be injected as-is, the quarterly
	// strategy pairs its value with the typical date instead
	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2025, 2): {Year: 2025, Quarter: 2, DividendValue: 7.0},
	}

	out, _ := c.Run("X", "Test Co", history, site)

	require.Len(t, out, 2)

	assert.Equal(t, contracts.TagSiteDerived, out[0].Strategy)
	assert.Equal(t, 7.0, out[0].DividendValue)
	assert.Equal(t, day(2025, 6, 15), out[0].RecordDate)

	assert.Equal(t, contracts.TagQuarterlyHistory, out[1].Strategy)
	assert.Equal(t, 5.5, out[1].DividendValue)
	assert.Equal(t, 2026, out[1].Year)

	for _, rec := range out {
		if rec.Year == 2025 && rec.Quarter == 2 {
			assert.NotEqual(t, contracts.TagQuarterlyHistory, rec.Strategy)
		}
	}
}

func TestCascade_SiteFutureInjection(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	}
	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2025, 2): {Year: 2025, Quarter: 2, RecordDate: day(2025, 5, 10), DividendValue: 7.0},
	}

	out, _ := c.Run("X", "Test Co", history, site)

	require.Len(t, out, 2)
	assert.Equal(t, contracts.TagSiteFuture, out[0].Strategy)
	assert.Equal(t, day(2025, 5, 10), out[0].RecordDate)
	assert.Equal(t, 7.0, out[0].DividendValue)

	assert.Equal(t, contracts.TagQuarterlyHistory, out[1].Strategy)
	assert.Equal(t, 2026, out[1].Year)
}

func TestCascade_SiteBeyondHorizonIgnored(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	}
	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2030, 2): {Year: 2030, Quarter: 2, RecordDate: day(2030, 6, 15), DividendValue: 9.0},
	}

	out, _ := c.Run("X", "Test Co", history, site)

	for _, rec := range out {
		assert.LessOrEqual(t, rec.Year, testParams.CurrentYear+testParams.Years)
	}
}

func TestCascade_DateHistoryFallback(t *testing.T) {
	c := newTestCascade(testParams)

	// dated payments without quarter information: quarterly buckets stay
	// empty, the intra-year-date strategy takes over
	history := []contracts.PaymentRecord{
		actual(2023, 0, 4.0, day(2023, 5, 20)),
	}

	out, _ := c.Run("X", "Test Co", history, nil)

	require.Len(t, out, 2)
	for i, rec := range out {
		assert.Equal(t, contracts.TagDateHistory, rec.Strategy)
		assert.Equal(t, 2025+i, rec.Year)
		assert.Equal(t, 2, rec.Quarter)
		assert.Equal(t, 4.0, rec.DividendValue)
		assert.Equal(t, day(2025+i, 5, 20), rec.RecordDate)
	}
}

func TestCascade_AnnualFallback(t *testing.T) {
	c := newTestCascade(testParams)

	// undated payments without quarter information: only the annual
	// average is usable, reused for all four quarters
	history := []contracts.PaymentRecord{
		actual(2023, 0, 8.0, time.Time{}),
	}

	out, _ := c.Run("X", "Test Co", history, nil)

	require.Len(t, out, 4*testParams.Years)
	for _, rec := range out {
		assert.Equal(t, contracts.TagAnnualHistory, rec.Strategy)
		assert.Equal(t, 8.0, rec.DividendValue)
		assert.Equal(t, 15, rec.RecordDate.Day())
	}
}

func TestCascade_Idempotence(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
		actual(2023, 4, 2.0, day(2023, 12, 10)),
	}
	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2024, 2): {Year: 2024, Quarter: 2, RecordDate: day(2024, 6, 20), DividendValue: 3.0},
		contracts.SiteKey(2025, 4): {Year: 2025, Quarter: 4, RecordDate: day(2025, 12, 5), DividendValue: 2.5},
	}

	out1, skips1 := c.Run("X", "Test Co", history, site)
	out2, skips2 := c.Run("X", "Test Co", history, site)

	assert.Equal(t, out1, out2)
	assert.Equal(t, skips1, skips2)
}

func TestCascade_NoDuplicatePeriodKeys(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
		actual(2022, 4, 2.0, day(2022, 12, 10)),
		actual(2023, 4, 2.0, day(2023, 12, 10)),
	}
	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2025, 2): {Year: 2025, Quarter: 2, RecordDate: day(2025, 6, 20), DividendValue: 7.0},
		contracts.SiteKey(2025, 4): {Year: 2025, Quarter: 4, DividendValue: 3.0},
	}

	out, _ := c.Run("X", "Test Co", history, site)

	seen := make(map[string]bool)
	for _, rec := range out {
		key := contracts.SiteKey(rec.Year, rec.Quarter)
		assert.False(t, seen[key], "duplicate period %s", key)
		seen[key] = true
	}
}

func TestCascade_ZeroYears(t *testing.T) {
	c := newTestCascade(contracts.RunParams{CurrentYear: 2024, Years: 0, HistoryYears: 3})

	history := []contracts.PaymentRecord{
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	}

	out, _ := c.Run("X", "Test Co", history, nil)
	assert.Empty(t, out)
}

func TestCascade_NegativeSiteValueSkipped(t *testing.T) {
	c := newTestCascade(testParams)

	history := []contracts.PaymentRecord{
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	}
	site := map[string]contracts.SiteForecast{
		contracts.SiteKey(2025, 2): {Year: 2025, Quarter: 2, RecordDate: day(2025, 6, 20), DividendValue: -1.0},
	}

	out, skips := c.Run("X", "Test Co", history, site)

	require.NotEmpty(t, skips)
	assert.Equal(t, 2025, skips[0].Year)
	assert.Equal(t, 2, skips[0].Quarter)

	for _, rec := range out {
		assert.GreaterOrEqual(t, rec.DividendValue, 0.0)
	}
}
