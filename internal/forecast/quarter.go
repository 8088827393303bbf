package forecast

import (
	"fmt"
	"time"
)

// QuarterOf maps a calendar month to its quarter (Jan-Mar=1 ... Oct-Dec=4).
func QuarterOf(month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d out of range", ErrValidation, month)
	}
	return (month-1)/3 + 1, nil
}

// QuarterOfMonthDay validates a (month, day) pair and returns the quarter.
func QuarterOfMonthDay(month, day int) (int, error) {
	if day < 1 || day > 31 {
		return 0, fmt.Errorf("%w: day %d out of range", ErrValidation, day)
	}
	return QuarterOf(month)
}

// QuarterOfDate maps a date to its calendar quarter.
func QuarterOfDate(t time.Time) int {
	q, _ := QuarterOf(int(t.Month()))
	return q
}
