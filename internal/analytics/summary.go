package analytics

import (
	"sort"
	"time"

	"spesa/internal/core"
)

// UnknownVendor labels spend whose vendor is missing or no longer exists.
const UnknownVendor = "Unknown vendor"

// Summarize reports spending for the period ending at now. It returns false
// when no priced purchase falls in the window, so callers can tell "no data"
// apart from "zero spend".
//
// Every calendar day of the window is present in the daily series, so an
// all-time summary runs from the epoch.
func Summarize(l *core.Ledger, period core.Period, now time.Time) (*core.Summary, bool) {
	r := period.Range(now)
	purchases := l.Purchases(core.Bought, core.WithPrice, core.Within(r))
	if len(purchases) == 0 {
		return nil, false
	}

	var (
		total      float64
		names      = make(map[string]struct{})
		byCategory = make(map[string]float64)
		byVendor   = make(map[string]float64)
		byDay      = make(map[string]float64)
		days       = make(map[string]time.Time)
	)
	for d := core.StartOfDay(r.From); !d.After(r.To); d = d.AddDate(0, 0, 1) {
		k := core.DayKey(d)
		byDay[k] = 0
		days[k] = d
	}

	for _, p := range purchases {
		price := *p.Item.PaidPrice
		total += price
		names[p.Item.Name] = struct{}{}

		category := p.Item.Category
		if category == "" {
			category = core.DefaultCategory
		}
		byCategory[category] += price
		byVendor[vendorLabel(l, p.Item.VendorID)] += price

		k := core.DayKey(p.Date)
		if _, ok := days[k]; !ok {
			days[k] = p.Date
		}
		byDay[k] += price
	}

	s := &core.Summary{
		Period:        period,
		From:          r.From,
		To:            r.To,
		TotalSpend:    total,
		UniqueItems:   len(names),
		AverageDaily:  total / float64(max(1, r.Days())),
		ByCategory:    ranked(byCategory),
		ByVendor:      ranked(byVendor),
		Daily:         series(byDay, days),
		PurchaseCount: len(purchases),
	}
	if len(s.ByCategory) > 0 {
		s.TopCategory = s.ByCategory[0].Name
	}
	if len(s.ByVendor) > 0 {
		s.TopVendor = s.ByVendor[0].Name
	}
	return s, true
}

func vendorLabel(l *core.Ledger, id *string) string {
	if id == nil || *id == "" {
		return UnknownVendor
	}
	if name, ok := l.VendorName(*id); ok {
		return name
	}
	return UnknownVendor
}

// ranked orders totals by amount descending, then name.
func ranked(totals map[string]float64) []core.Amount {
	out := make([]core.Amount, 0, len(totals))
	for name, v := range totals {
		out = append(out, core.Amount{Name: name, Total: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func series(byDay map[string]float64, days map[string]time.Time) core.TimeSeries {
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	// Day keys sort chronologically.
	sort.Strings(keys)

	ts := core.TimeSeries{
		Labels: make([]string, len(keys)),
		Values: make([]float64, len(keys)),
	}
	for i, k := range keys {
		ts.Labels[i] = core.ToLocalDate(days[k])
		ts.Values[i] = byDay[k]
	}
	return ts
}
