package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		month int
		want  int
	}{
		{1, 1}, {2, 1}, {3, 1},
		{4, 2}, {5, 2}, {6, 2},
		{7, 3}, {8, 3}, {9, 3},
		{10, 4}, {11, 4}, {12, 4},
	}

	for _, tt := range tests {
		q, err := QuarterOf(tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.want, q, "month %d", tt.month)
	}
}

func TestQuarterOf_Invalid(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		_, err := QuarterOf(month)
		require.Error(t, err, "month %d", month)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestQuarterOfMonthDay(t *testing.T) {
	q, err := QuarterOfMonthDay(6, 15)
	require.NoError(t, err)
	assert.Equal(t, 2, q)

	_, err = QuarterOfMonthDay(6, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = QuarterOfMonthDay(6, 32)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuarterOfDate(t *testing.T) {
	assert.Equal(t, 1, QuarterOfDate(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 4, QuarterOfDate(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))
}
