package core

import "time"

// Purchase is an item denormalized with the day of the list that contains it.
type Purchase struct {
	ListID string
	Date   time.Time
	Item   ShoppingItem
}

// PurchaseFilter selects purchases during extraction.
type PurchaseFilter func(Purchase) bool

// Purchases flattens every list's items together with the list's date, in
// ledger order. Lists whose date cannot be determined are skipped. Filters are
// ANDed.
func (l *Ledger) Purchases(filters ...PurchaseFilter) []Purchase {
	var out []Purchase
	for _, list := range l.Lists {
		date, ok := list.Date()
		if !ok {
			continue
		}
	items:
		for _, it := range list.Items {
			p := Purchase{ListID: list.ID, Date: date, Item: it}
			for _, f := range filters {
				if !f(p) {
					continue items
				}
			}
			out = append(out, p)
		}
	}
	return out
}

// Bought keeps purchased items only.
func Bought(p Purchase) bool { return p.Item.IsBought() }

// WithQuantity keeps items with a recorded purchased amount.
func WithQuantity(p Purchase) bool { return p.Item.PurchasedAmount != nil }

// WithPrice keeps items with a recorded paid price (zero included).
func WithPrice(p Purchase) bool { return p.Item.PaidPrice != nil }

// Named keeps purchases of one (name, unit) pair.
func Named(name, unit string) PurchaseFilter {
	return func(p Purchase) bool {
		return p.Item.Name == name && p.Item.Unit == unit
	}
}

// Within keeps purchases whose list day falls in r.
func Within(r Range) PurchaseFilter {
	return func(p Purchase) bool { return r.Contains(p.Date) }
}

// ItemKey identifies a master item.
type ItemKey struct {
	Name string
	Unit string
}

// Key returns the (name, unit) pair of the purchased item.
func (p Purchase) Key() ItemKey {
	return ItemKey{Name: p.Item.Name, Unit: p.Item.Unit}
}
