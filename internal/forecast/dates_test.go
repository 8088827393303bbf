package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardQuarterDate(t *testing.T) {
	tests := []struct {
		quarter   int
		wantMonth time.Month
	}{
		{1, time.March},
		{2, time.June},
		{3, time.September},
		{4, time.December},
	}

	for _, tt := range tests {
		d, err := StandardQuarterDate(2025, tt.quarter)
		require.NoError(t, err)
		assert.Equal(t, tt.wantMonth, d.Month())
		assert.Equal(t, 15, d.Day())
		assert.Equal(t, 2025, d.Year())
	}

	_, err := StandardQuarterDate(2025, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = StandardQuarterDate(2025, 5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSafeDate(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day int
		want             string
	}{
		{"valid date", 2025, 6, 15, "2025-06-15"},
		{"feb 30 leap year", 2024, 2, 30, "2024-02-29"},
		{"feb 30 non-leap", 2025, 2, 30, "2025-02-28"},
		{"feb 31", 2023, 2, 31, "2023-02-28"},
		{"day 31 in april", 2025, 4, 31, "2025-04-30"},
		{"day 31 in june", 2025, 6, 31, "2025-06-30"},
		{"day 31 in november", 2025, 11, 31, "2025-11-30"},
		{"day 31 in december", 2025, 12, 31, "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := SafeDate(tt.year, tt.month, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Format("2006-01-02"))
		})
	}
}

func TestSafeDate_Invalid(t *testing.T) {
	_, err := SafeDate(2025, 0, 15)
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = SafeDate(2025, 13, 15)
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = SafeDate(2025, 6, 0)
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = SafeDate(2025, 6, 32)
	assert.ErrorIs(t, err, ErrConstruction)
}
