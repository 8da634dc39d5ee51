package analytics

import (
	"testing"
	"time"

	"spesa/internal/core"
)

func TestSummarizeTotals(t *testing.T) {
	l := core.NewLedger()
	l.Vendors = []core.Vendor{{ID: "v1", Name: "Market"}}

	milk := bought("Milk", "liter", 1, 100)
	milk.VendorID = core.String("v1")
	put(l, daysAgo(1), milk)
	put(l, daysAgo(3), bought("Milk", "liter", 1, 200))
	bread := bought("Bread", "pcs", 1, 300)
	bread.Category = "Bakery"
	bread.VendorID = core.String("gone")
	put(l, daysAgo(3), bread)
	put(l, daysAgo(40), bought("Cheese", "kg", 1, 9999))

	s, ok := Summarize(l, core.Last7Days, today)
	if !ok {
		t.Fatalf("expected a summary")
	}
	if s.TotalSpend != 600 || s.PurchaseCount != 3 {
		t.Fatalf("expected 600 over 3 purchases, got %v over %d", s.TotalSpend, s.PurchaseCount)
	}
	if s.UniqueItems != 2 {
		t.Fatalf("expected 2 distinct names, got %d", s.UniqueItems)
	}
	if s.AverageDaily != 600.0/7 {
		t.Fatalf("unexpected daily average %v", s.AverageDaily)
	}
	if s.TopCategory != "Bakery" {
		t.Fatalf("expected Bakery and Dairy tie broken by name, got %s (%+v)", s.TopCategory, s.ByCategory)
	}
	if s.TopVendor != UnknownVendor {
		t.Fatalf("expected unknown vendor on top, got %s (%+v)", s.TopVendor, s.ByVendor)
	}
	if len(s.ByVendor) != 2 || s.ByVendor[1].Name != "Market" || s.ByVendor[1].Total != 100 {
		t.Fatalf("unexpected vendor breakdown %+v", s.ByVendor)
	}

	if len(s.Daily.Labels) != 7 || len(s.Daily.Values) != 7 {
		t.Fatalf("expected 7 seeded days, got %d", len(s.Daily.Labels))
	}
	if s.Daily.Labels[0] != core.ToLocalDate(daysAgo(6)) || s.Daily.Labels[6] != core.ToLocalDate(daysAgo(0)) {
		t.Fatalf("series not chronological: %v", s.Daily.Labels)
	}
	if s.Daily.Values[3] != 500 || s.Daily.Values[5] != 100 || s.Daily.Values[6] != 0 {
		t.Fatalf("unexpected series values %v", s.Daily.Values)
	}
}

func TestSummarizeNoData(t *testing.T) {
	l := core.NewLedger()
	pending := bought("Milk", "liter", 1, 100)
	pending.Status = core.StatusPending
	put(l, daysAgo(1), pending)
	unpriced := bought("Bread", "pcs", 1, 0)
	unpriced.PaidPrice = nil
	put(l, daysAgo(1), unpriced)

	if s, ok := Summarize(l, core.Last30Days, today); ok || s != nil {
		t.Fatalf("expected absent summary, got %+v", s)
	}
}

func TestSummarizeCountsFreeItems(t *testing.T) {
	l := core.NewLedger()
	put(l, daysAgo(0), bought("Sample", "pcs", 1, 0))
	s, ok := Summarize(l, core.Last7Days, today)
	if !ok {
		t.Fatalf("zero-priced purchase should still produce a summary")
	}
	if s.TotalSpend != 0 || s.PurchaseCount != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeAllTimeRunsFromEpoch(t *testing.T) {
	l := core.NewLedger()
	put(l, daysAgo(9), bought("Milk", "liter", 1, 100))

	s, ok := Summarize(l, core.AllTime, today)
	if !ok {
		t.Fatalf("expected a summary")
	}
	days := core.AllTime.Range(today).Days()
	if days < 10000 {
		t.Fatalf("expected an epoch based range, got %d days", days)
	}
	if len(s.Daily.Labels) != days || len(s.Daily.Values) != days {
		t.Fatalf("expected %d daily points, got %d", days, len(s.Daily.Labels))
	}
	if s.AverageDaily != 100/float64(days) {
		t.Fatalf("expected 100 over %d days, got %v", days, s.AverageDaily)
	}
	if !s.From.Equal(time.Unix(0, 0).In(today.Location())) {
		t.Fatalf("expected window to start at the epoch, got %v", s.From)
	}
	if s.Daily.Values[0] != 0 || s.Daily.Values[days-10] != 100 {
		t.Fatalf("unexpected series ends: first=%v nine-days-ago=%v", s.Daily.Values[0], s.Daily.Values[days-10])
	}
}
