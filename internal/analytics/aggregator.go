// Package analytics derives read-only views from a ledger: master items,
// restock suggestions, period summaries and spend forecasts. Every function
// here is pure; callers pass the ledger snapshot they want analysed.
package analytics

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"spesa/internal/core"
)

// newCollator returns a root-locale collator. Collators keep internal buffers
// and are not safe for concurrent use, so each call builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

// AllCategories returns the built-in categories followed by the custom ones,
// without duplicates.
func AllCategories(l *core.Ledger) []string {
	seen := make(map[string]struct{}, len(core.BuiltinCategories)+len(l.CustomCategories))
	out := make([]string, 0, len(core.BuiltinCategories)+len(l.CustomCategories))
	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range core.BuiltinCategories {
		add(c)
	}
	for _, c := range l.CustomCategories {
		add(c)
	}
	return out
}

// KnownItemNames is the union of every item name in any list and every
// itemInfoMap key, collated.
func KnownItemNames(l *core.Ledger) []string {
	set := make(map[string]struct{})
	for _, list := range l.Lists {
		for _, it := range list.Items {
			if it.Name != "" {
				set[it.Name] = struct{}{}
			}
		}
	}
	for name := range l.ItemInfoMap {
		if name != "" {
			set[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	newCollator().SortStrings(names)
	return names
}

// AllKnownItems rolls up every bought item that has both a price and a
// quantity into one MasterItem per (name, unit). The latest list date wins for
// lastPricePerUnit and category; on equal dates the later record wins.
func AllKnownItems(l *core.Ledger) []core.MasterItem {
	type acc struct {
		item   core.MasterItem
		latest time.Time
		seen   bool
	}
	groups := make(map[core.ItemKey]*acc)
	var order []core.ItemKey

	for _, p := range l.Purchases(core.Bought, core.WithQuantity, core.WithPrice) {
		k := p.Key()
		g, ok := groups[k]
		if !ok {
			g = &acc{item: core.MasterItem{Name: k.Name, Unit: k.Unit}}
			groups[k] = g
			order = append(order, k)
		}
		g.item.TotalQuantity += *p.Item.PurchasedAmount
		g.item.TotalSpend += *p.Item.PaidPrice
		g.item.PurchaseCount++
		if !g.seen || !p.Date.Before(g.latest) {
			ppu, _ := p.Item.PricePerUnit()
			g.item.LastPricePerUnit = ppu
			g.item.Category = p.Item.Category
			g.latest = p.Date
			g.seen = true
		}
	}

	out := make([]core.MasterItem, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k].item)
	}
	col := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		if c := col.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// LatestPurchaseInfo finds the most recent bought (name, unit) record carrying
// both price and quantity. A zero LatestPurchase (Found false) means none.
func LatestPurchaseInfo(l *core.Ledger, name, unit string) core.LatestPurchase {
	var (
		best   core.Purchase
		latest time.Time
		found  bool
	)
	for _, p := range l.Purchases(core.Bought, core.WithQuantity, core.WithPrice, core.Named(name, unit)) {
		if !found || !p.Date.Before(latest) {
			best, latest, found = p, p.Date, true
		}
	}
	if !found {
		return core.LatestPurchase{}
	}
	ppu, _ := best.Item.PricePerUnit()
	return core.LatestPurchase{
		Found:        true,
		PricePerUnit: ppu,
		VendorID:     best.Item.VendorID,
		Quantity:     *best.Item.PurchasedAmount,
	}
}
