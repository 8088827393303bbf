package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakulov/divcast/internal/contracts"
)

func TestModal(t *testing.T) {
	assert.Equal(t, 6, modal([]int{6, 6, 3}))
	assert.Equal(t, 3, modal([]int{6, 6, 3, 3}), "lowest value wins ties")
	assert.Equal(t, 5, modal([]int{5}))
	assert.Equal(t, 0, modal(nil))
	assert.Equal(t, 0, modal([]int{0, 0}), "zero entries are unknown")
	assert.Equal(t, 2, modal([]int{0, 2}))
}

func TestBuildHistory(t *testing.T) {
	records := []contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
		actual(2023, 4, 2.0, day(2023, 12, 10)),
		actual(2023, 1, 0.0, day(2023, 3, 15)), // zero payment, excluded
		actual(0, 2, 3.0, day(2021, 6, 15)),    // no year, excluded
		{Ticker: "X", Source: contracts.SourceSiteForecast, Year: 2025, Quarter: 2, DividendValue: 7.0},
	}

	h := BuildHistory(records)

	assert.Len(t, h.All, 3)
	assert.Len(t, h.Quarters[2], 2)
	assert.Len(t, h.Quarters[4], 1)
	assert.Empty(t, h.Quarters[1])
	assert.Len(t, h.DateGroups[MonthDay{Month: 6, Day: 15}], 2)
	assert.Len(t, h.DateGroups[MonthDay{Month: 12, Day: 10}], 1)
}

func TestAggregateQuarters(t *testing.T) {
	h := BuildHistory([]contracts.PaymentRecord{
		actual(2022, 2, 5.0, day(2022, 6, 15)),
		actual(2023, 2, 6.0, day(2023, 6, 15)),
	})

	profiles := AggregateQuarters(h)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, 2, p.Quarter)
	assert.Equal(t, 5.5, p.AvgDividend)
	assert.Equal(t, 6, p.Month)
	assert.Equal(t, 15, p.Day)
}

func TestAggregateQuarters_StandardDateFallback(t *testing.T) {
	// quarter known but no payment dates: typical date falls back to the
	// standard quarter date
	h := BuildHistory([]contracts.PaymentRecord{
		actual(2023, 3, 4.0, time.Time{}),
	})

	profiles := AggregateQuarters(h)
	require.Len(t, profiles, 1)
	assert.Equal(t, 3, profiles[0].Quarter)
	assert.Equal(t, 9, profiles[0].Month)
	assert.Equal(t, 15, profiles[0].Day)
	assert.Equal(t, 4.0, profiles[0].AvgDividend)
}

func TestAggregateQuarters_ModalTieBreak(t *testing.T) {
	// Q2 payments split between May and June: lowest month wins the tie,
	// and the day is the mode among that month's payments only
	h := BuildHistory([]contracts.PaymentRecord{
		actual(2021, 2, 4.0, day(2021, 5, 20)),
		actual(2022, 2, 5.0, day(2022, 6, 15)),
	})

	profiles := AggregateQuarters(h)
	require.Len(t, profiles, 1)
	assert.Equal(t, 5, profiles[0].Month)
	assert.Equal(t, 20, profiles[0].Day)
	assert.Equal(t, 4.5, profiles[0].AvgDividend)
}

func TestAggregateDates(t *testing.T) {
	h := BuildHistory([]contracts.PaymentRecord{
		actual(2022, 0, 3.0, day(2022, 10, 5)),
		actual(2023, 0, 5.0, day(2023, 10, 5)),
		actual(2023, 0, 2.0, day(2023, 4, 20)),
	})

	profiles := AggregateDates(h)
	require.Len(t, profiles, 2)

	// ordered by (month, day)
	assert.Equal(t, 4, profiles[0].Month)
	assert.Equal(t, 20, profiles[0].Day)
	assert.Equal(t, 2, profiles[0].Quarter)
	assert.Equal(t, 2.0, profiles[0].AvgDividend)

	assert.Equal(t, 10, profiles[1].Month)
	assert.Equal(t, 5, profiles[1].Day)
	assert.Equal(t, 4, profiles[1].Quarter)
	assert.Equal(t, 4.0, profiles[1].AvgDividend)
}

func TestAggregateAnnual(t *testing.T) {
	_, ok := AggregateAnnual(TickerHistory{})
	assert.False(t, ok)

	h := BuildHistory([]contracts.PaymentRecord{
		actual(2022, 0, 3.0, time.Time{}),
		actual(2023, 0, 4.0, time.Time{}),
	})

	avg, ok := AggregateAnnual(h)
	require.True(t, ok)
	assert.Equal(t, 3.5, avg)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 5.67, round2(5.666))
	assert.Equal(t, 5.66, round2(5.664))
	assert.Equal(t, 0.0, round2(0))
}
