package analytics

import (
	"testing"

	"spesa/internal/core"
)

func TestForecastRequiresSignal(t *testing.T) {
	tests := []struct {
		name string
		ago  []int
	}{
		{"too few purchases", []int{90, 60, 30, 0}},
		{"span too short", []int{28, 20, 10, 5, 0}},
	}
	for _, tc := range tests {
		l := core.NewLedger()
		for _, n := range tc.ago {
			put(l, daysAgo(n), bought("Milk", "liter", 1, 1e9))
		}
		if f, ok := Forecast(l); ok || f != nil {
			t.Fatalf("%s: expected no forecast, got %+v", tc.name, f)
		}
	}
}

func TestForecastExtrapolates(t *testing.T) {
	l := core.NewLedger()
	for _, n := range []int{29, 20, 10, 5, 0} {
		put(l, daysAgo(n), bought("Milk", "liter", 1, 600))
	}
	f, ok := Forecast(l)
	if !ok {
		t.Fatalf("expected a forecast")
	}
	if f.SpanDays != 30 || f.TotalSpend != 3000 {
		t.Fatalf("unexpected span/total: %+v", f)
	}
	if f.Daily != 100 || f.Monthly != 3000 {
		t.Fatalf("unexpected rates: %+v", f)
	}
}
