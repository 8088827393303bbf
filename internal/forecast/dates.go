package forecast

import (
	"fmt"
	"time"
)

// standardQuarterDates are the default record dates used for synthesized
// forecasts without historical date information: 15 Mar/Jun/Sep/Dec.
var standardQuarterDates = [4]struct{ Month, Day int }{
	{3, 15},
	{6, 15},
	{9, 15},
	{12, 15},
}

// StandardQuarterDate returns the default record date for a quarter.
func StandardQuarterDate(year, quarter int) (time.Time, error) {
	if quarter < 1 || quarter > 4 {
		return time.Time{}, fmt.Errorf("%w: quarter %d out of range", ErrValidation, quarter)
	}
	d := standardQuarterDates[quarter-1]
	return time.Date(year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), nil
}

// SafeDate builds a date from possibly inconsistent (year, month, day),
// clamping combinations that do not exist:
//   - Feb 29+ clamps to 29 in leap years, 28 otherwise
//   - day 31 in a 30-day month clamps to 30
//   - anything else falls back to the last day of the previous month
func SafeDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d out of range", ErrConstruction, month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day %d out of range", ErrConstruction, day)
	}

	if day <= daysInMonth(year, month) {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
	}

	switch {
	case month == 2:
		return time.Date(year, time.February, daysInMonth(year, 2), 0, 0, 0, 0, time.UTC), nil
	case day > 30 && (month == 4 || month == 6 || month == 9 || month == 11):
		return time.Date(year, time.Month(month), 30, 0, 0, 0, 0, time.UTC), nil
	case month > 1:
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 0, -1), nil
	default:
		return time.Date(year-1, time.December, 31, 0, 0, 0, 0, time.UTC), nil
	}
}

func daysInMonth(year, month int) int {
	// day 0 of the next month normalizes to the last day of this month
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
