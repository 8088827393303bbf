package forecast

import (
	"github.com/aakulov/divcast/internal/contracts"
)

// ApplyCriticalScenario decides whether a ticker gets the forced zero-forecast
// sweep: no actual payouts inside the trailing window (or none at all), or the
// site publishes forecasts that are uniformly zero.
func ApplyCriticalScenario(history []contracts.PaymentRecord, site map[string]contracts.SiteForecast, params contracts.RunParams) bool {
	windowStart := params.CurrentYear - params.HistoryYears

	var recentSum float64
	for _, r := range history {
		if r.Source != contracts.SourceActual {
			continue
		}
		if r.Year >= windowStart {
			recentSum += r.DividendValue
		}
	}
	if recentSum == 0 {
		return true
	}

	if len(site) > 0 {
		var siteSum float64
		for _, f := range site {
			siteSum += f.DividendValue
		}
		if siteSum == 0 {
			return true
		}
	}

	return false
}

// siteTotal sums all site-forecast values for a ticker.
func siteTotal(site map[string]contracts.SiteForecast) float64 {
	var sum float64
	for _, f := range site {
		sum += f.DividendValue
	}
	return sum
}
