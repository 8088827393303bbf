package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aakulov/divcast/internal/contracts"
)

func actual(year int, quarter int, value float64, date time.Time) contracts.PaymentRecord {
	rec := contracts.PaymentRecord{
		Ticker:        "X",
		DividendValue: value,
		Source:        contracts.SourceActual,
		Strategy:      contracts.TagActual,
		Year:          year,
		Quarter:       quarter,
	}
	if !date.IsZero() {
		rec.RecordDate = date
		rec.RecordDateStr = date.Format(contracts.DateLayout)
		rec.Month = int(date.Month())
	}
	return rec
}

func day(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func TestApplyCriticalScenario(t *testing.T) {
	params := contracts.RunParams{CurrentYear: 2024, Years: 2, HistoryYears: 3}

	tests := []struct {
		name    string
		history []contracts.PaymentRecord
		site    map[string]contracts.SiteForecast
		want    bool
	}{
		{
			name: "no history at all",
			want: true,
		},
		{
			name: "payments only before the window",
			history: []contracts.PaymentRecord{
				actual(2019, 2, 10.0, day(2019, 6, 15)),
			},
			want: true,
		},
		{
			name: "recent payments",
			history: []contracts.PaymentRecord{
				actual(2023, 2, 5.0, day(2023, 6, 15)),
			},
			want: false,
		},
		{
			name: "recent payments but site forecasts all zero",
			history: []contracts.PaymentRecord{
				actual(2023, 2, 5.0, day(2023, 6, 15)),
			},
			site: map[string]contracts.SiteForecast{
				contracts.SiteKey(2025, 2): {Year: 2025, Quarter: 2, DividendValue: 0},
			},
			want: true,
		},
		{
			name: "recent payments and nonzero site forecasts",
			history: []contracts.PaymentRecord{
				actual(2023, 2, 5.0, day(2023, 6, 15)),
			},
			site: map[string]contracts.SiteForecast{
				contracts.SiteKey(2025, 2): {Year: 2025, Quarter: 2, DividendValue: 7.0},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyCriticalScenario(tt.history, tt.site, params))
		})
	}
}

func TestApplyCriticalScenario_WindowBoundary(t *testing.T) {
	params := contracts.RunParams{CurrentYear: 2024, Years: 2, HistoryYears: 3}

	// 2021 is exactly current_year - history_years and counts as recent
	history := []contracts.PaymentRecord{
		actual(2021, 2, 1.0, day(2021, 6, 15)),
	}
	assert.False(t, ApplyCriticalScenario(history, nil, params))

	history = []contracts.PaymentRecord{
		actual(2020, 2, 1.0, day(2020, 6, 15)),
	}
	assert.True(t, ApplyCriticalScenario(history, nil, params))
}
