package analytics

import "spesa/internal/core"

const (
	minForecastPurchases = 5
	minForecastSpanDays  = 30
	forecastMonthDays    = 30
)

// Forecast extrapolates the average daily spend over the whole purchase
// history. It returns false when there are fewer than five priced purchases
// or they span less than thirty days.
func Forecast(l *core.Ledger) (*core.Forecast, bool) {
	purchases := l.Purchases(core.Bought, core.WithPrice)
	if len(purchases) < minForecastPurchases {
		return nil, false
	}

	earliest, latest := purchases[0].Date, purchases[0].Date
	var total float64
	for _, p := range purchases {
		total += *p.Item.PaidPrice
		if p.Date.Before(earliest) {
			earliest = p.Date
		}
		if p.Date.After(latest) {
			latest = p.Date
		}
	}

	span := core.DaysBetween(earliest, latest) + 1
	if span < minForecastSpanDays {
		return nil, false
	}
	daily := total / float64(span)
	return &core.Forecast{
		Daily:         daily,
		Monthly:       daily * forecastMonthDays,
		TotalSpend:    total,
		SpanDays:      span,
		PurchaseCount: len(purchases),
	}, true
}
