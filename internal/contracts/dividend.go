package contracts

import (
	"fmt"
	"time"
)

// SourceKind classifies where a payment record came from.
type SourceKind int

const (
	// SourceActual is an observed historical payment.
	SourceActual SourceKind = 0
	// SourceSiteForecast is an analyst forecast scraped from the dividend site.
	SourceSiteForecast SourceKind = 1
	// SourceDerivedForecast is produced by the forecast cascade.
	SourceDerivedForecast SourceKind = 2
)

// String returns a human-readable label for export.
func (k SourceKind) String() string {
	switch k {
	case SourceActual:
		return "actual"
	case SourceSiteForecast:
		return "site forecast"
	case SourceDerivedForecast:
		return "derived forecast"
	default:
		return "unknown"
	}
}

// StrategyTag records which strategy produced a record's value.
// Closed set; assigned once and never mutated.
type StrategyTag string

const (
	// TagActual marks raw actual input rows.
	TagActual StrategyTag = "ACTUAL"
	// TagSiteRaw marks raw site-forecast input rows.
	TagSiteRaw StrategyTag = "SITE_RAW"
	// TagSiteCurrent marks site forecasts for the current year injected by the cascade.
	TagSiteCurrent StrategyTag = "SITE_CURRENT"
	// TagSiteFuture marks site forecasts for future years injected by the cascade.
	TagSiteFuture StrategyTag = "SITE_FUTURE"
	// TagQuarterlyHistory marks forecasts synthesized from per-quarter history.
	TagQuarterlyHistory StrategyTag = "QUARTERLY_HISTORY"
	// TagDateHistory marks forecasts synthesized from intra-year payment dates.
	TagDateHistory StrategyTag = "DATE_HISTORY"
	// TagAnnualHistory marks forecasts synthesized from the annual average.
	TagAnnualHistory StrategyTag = "ANNUAL_HISTORY"
	// TagCriticalInactive marks the forced zero sweep for inactive companies.
	TagCriticalInactive StrategyTag = "CRITICAL_INACTIVE"
	// TagEmergencyFallback marks the zero sweep when no data exists at all.
	TagEmergencyFallback StrategyTag = "EMERGENCY_FALLBACK"
	// TagSiteDerived marks history-strategy slots overridden by a site forecast.
	TagSiteDerived StrategyTag = "SITE_DERIVED"
)

// NoData is the display placeholder for absent dates.
const NoData = "no data"

// DateLayout is the display format used by the source site (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// PaymentRecord is an observed or predicted dividend event.
type PaymentRecord struct {
	Ticker           string      `json:"ticker"`
	Name             string      `json:"name"`
	RecordDate       time.Time   `json:"record_date"`        // zero value means no data
	RecordDateStr    string      `json:"record_date_str"`    // display only, never used for logic
	AnnouncementDate string      `json:"announcement_date"`  // metadata, NoData when unknown
	DividendValue    float64     `json:"dividend_value"`     // >= 0; 0.0 is a known/predicted skip
	Period           string      `json:"period"`             // "Q{q} {year}" or "{year}"
	Source           SourceKind  `json:"source_kind"`
	Year             int         `json:"year"`
	Quarter          int         `json:"quarter"` // 1-4, 0 when unknown
	Month            int         `json:"month"`   // 1-12, 0 when unknown
	Strategy         StrategyTag `json:"strategy"`
}

// HasDate reports whether the record carries an effective payment date.
func (r PaymentRecord) HasDate() bool {
	return !r.RecordDate.IsZero()
}

// SiteForecast is an external-source prediction keyed by (year, quarter).
type SiteForecast struct {
	Year          int       `json:"year"`
	Quarter       int       `json:"quarter"`
	RecordDate    time.Time `json:"record_date"` // zero value means no date published
	DividendValue float64   `json:"dividend_value"`
}

// SiteKey builds the "{year}-{quarter}" map key for site forecasts.
func SiteKey(year, quarter int) string {
	return fmt.Sprintf("%d-%d", year, quarter)
}

// PeriodLabel formats the display period for a record.
func PeriodLabel(year, quarter int) string {
	if quarter >= 1 && quarter <= 4 {
		return fmt.Sprintf("Q%d %d", quarter, year)
	}
	return fmt.Sprintf("%d", year)
}

// RunParams is the per-run configuration of the cascade.
type RunParams struct {
	CurrentYear  int // base year; forecasts cover (CurrentYear, CurrentYear+Years]
	Years        int // forecast horizon in years
	HistoryYears int // trailing window for the activity check
}

// DefaultRunParams matches the source system defaults.
func DefaultRunParams(currentYear int) RunParams {
	return RunParams{
		CurrentYear:  currentYear,
		Years:        10,
		HistoryYears: 3,
	}
}
