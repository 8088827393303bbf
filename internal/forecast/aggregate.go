package forecast

import (
	"math"
	"sort"

	"github.com/aakulov/divcast/internal/contracts"
)

// QuarterProfile is the Quarterly Aggregator output for one quarter:
// the representative amount and the typical payment date-of-month.
type QuarterProfile struct {
	Quarter     int
	AvgDividend float64 // mean over the quarter's history, 2 decimals
	Month       int     // most frequent month, lowest wins ties
	Day         int     // most frequent day, lowest wins ties
}

// DateProfile is the Intra-year-date Aggregator output for one (month, day).
type DateProfile struct {
	Month       int
	Day         int
	Quarter     int // derived via the quarter classifier
	AvgDividend float64
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// mean returns the average dividend over records.
func mean(records []contracts.PaymentRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.DividendValue
	}
	return sum / float64(len(records))
}

// modal returns the most frequent value; the lowest value wins ties.
// Zero entries (unknown) are ignored.
func modal(values []int) int {
	counts := make(map[int]int)
	for _, v := range values {
		if v > 0 {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return 0
	}

	best, bestCount := 0, 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

// AggregateQuarters computes per-quarter profiles for every quarter with at
// least one historical payment. Quarters without typical-date information
// fall back to the standard quarter date.
func AggregateQuarters(h TickerHistory) []QuarterProfile {
	var profiles []QuarterProfile

	for q := 1; q <= 4; q++ {
		bucket := h.Quarters[q]
		if len(bucket) == 0 {
			continue
		}

		var months []int
		for _, r := range bucket {
			months = append(months, r.Month)
		}
		month := modal(months)

		var days []int
		for _, r := range bucket {
			if r.HasDate() && int(r.RecordDate.Month()) == month {
				days = append(days, r.RecordDate.Day())
			}
		}
		day := modal(days)

		if month == 0 {
			month = standardQuarterDates[q-1].Month
		}
		if day == 0 {
			day = standardQuarterDates[q-1].Day
		}

		profiles = append(profiles, QuarterProfile{
			Quarter:     q,
			AvgDividend: round2(mean(bucket)),
			Month:       month,
			Day:         day,
		})
	}

	return profiles
}

// AggregateDates computes profiles for each exact (month, day) payment date,
// ordered by (month, day) for deterministic output.
func AggregateDates(h TickerHistory) []DateProfile {
	keys := make([]MonthDay, 0, len(h.DateGroups))
	for k := range h.DateGroups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Month != keys[j].Month {
			return keys[i].Month < keys[j].Month
		}
		return keys[i].Day < keys[j].Day
	})

	var profiles []DateProfile
	for _, k := range keys {
		quarter, err := QuarterOf(k.Month)
		if err != nil {
			continue
		}
		profiles = append(profiles, DateProfile{
			Month:       k.Month,
			Day:         k.Day,
			Quarter:     quarter,
			AvgDividend: round2(mean(h.DateGroups[k])),
		})
	}

	return profiles
}

// AggregateAnnual computes the single annual average over all payments.
// The value is reused for all four quarters at the standard dates.
func AggregateAnnual(h TickerHistory) (float64, bool) {
	if len(h.All) == 0 {
		return 0, false
	}
	return round2(mean(h.All)), true
}
