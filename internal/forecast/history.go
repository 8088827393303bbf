package forecast

import (
	"github.com/aakulov/divcast/internal/contracts"
)

// MonthDay keys intra-year date groups.
type MonthDay struct {
	Month int
	Day   int
}

// TickerHistory partitions a ticker's actual payments for the aggregators.
// Only nonzero payments participate; zero-value rows still count for the
// activity window but carry no date/amount signal.
type TickerHistory struct {
	// Quarters groups payments by fiscal quarter (1-4).
	Quarters map[int][]contracts.PaymentRecord
	// DateGroups groups dated payments by exact (month, day).
	DateGroups map[MonthDay][]contracts.PaymentRecord
	// All holds every nonzero actual payment, for annual aggregation.
	All []contracts.PaymentRecord
}

// BuildHistory partitions actual payment records.
func BuildHistory(records []contracts.PaymentRecord) TickerHistory {
	h := TickerHistory{
		Quarters:   make(map[int][]contracts.PaymentRecord),
		DateGroups: make(map[MonthDay][]contracts.PaymentRecord),
	}

	for _, r := range records {
		if r.Source != contracts.SourceActual || r.Year == 0 {
			continue
		}
		if r.DividendValue <= 0 {
			continue
		}

		h.All = append(h.All, r)

		if r.Quarter >= 1 && r.Quarter <= 4 {
			h.Quarters[r.Quarter] = append(h.Quarters[r.Quarter], r)
		}

		if r.HasDate() {
			key := MonthDay{Month: int(r.RecordDate.Month()), Day: r.RecordDate.Day()}
			h.DateGroups[key] = append(h.DateGroups[key], r)
		}
	}

	return h
}
