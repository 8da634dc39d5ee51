package core

import (
	"fmt"
)

// NewLedger returns an empty ledger with every collection initialized.
func NewLedger() *Ledger {
	return &Ledger{
		Lists:             []ShoppingList{},
		CustomCategories:  []string{},
		Vendors:           []Vendor{},
		CategoryVendorMap: map[string]string{},
		ItemInfoMap:       map[string]ItemInfo{},
	}
}

// Normalize replaces nil collections with empty ones so that a decoded ledger
// and a freshly built one serialize identically.
func (l *Ledger) Normalize() {
	if l.Lists == nil {
		l.Lists = []ShoppingList{}
	}
	for i := range l.Lists {
		if l.Lists[i].Items == nil {
			l.Lists[i].Items = []ShoppingItem{}
		}
	}
	if l.CustomCategories == nil {
		l.CustomCategories = []string{}
	}
	if l.Vendors == nil {
		l.Vendors = []Vendor{}
	}
	if l.CategoryVendorMap == nil {
		l.CategoryVendorMap = map[string]string{}
	}
	if l.ItemInfoMap == nil {
		l.ItemInfoMap = map[string]ItemInfo{}
	}
}

// Clone returns a deep copy. Mutations always work on a clone and swap it in.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return NewLedger()
	}
	out := &Ledger{
		Lists:             make([]ShoppingList, len(l.Lists)),
		CustomCategories:  append([]string{}, l.CustomCategories...),
		Vendors:           append([]Vendor{}, l.Vendors...),
		CategoryVendorMap: make(map[string]string, len(l.CategoryVendorMap)),
		ItemInfoMap:       make(map[string]ItemInfo, len(l.ItemInfoMap)),
	}
	for i, list := range l.Lists {
		out.Lists[i] = list.Clone()
	}
	for k, v := range l.CategoryVendorMap {
		out.CategoryVendorMap[k] = v
	}
	for k, v := range l.ItemInfoMap {
		out.ItemInfoMap[k] = v
	}
	return out
}

// Clone deep-copies the list and its items.
func (s ShoppingList) Clone() ShoppingList {
	out := s
	out.Items = make([]ShoppingItem, len(s.Items))
	for i, it := range s.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// Clone copies the optional fields so the copy shares no pointers with the original.
func (it ShoppingItem) Clone() ShoppingItem {
	out := it
	out.PurchasedAmount = clonePtr(it.PurchasedAmount)
	out.PaidPrice = clonePtr(it.PaidPrice)
	out.VendorID = clonePtr(it.VendorID)
	out.EstimatedPrice = clonePtr(it.EstimatedPrice)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Validate checks the structural invariants of the whole ledger.
func (l *Ledger) Validate() error {
	lists := make(map[string]struct{}, len(l.Lists))
	days := make(map[string]string, len(l.Lists))
	for _, list := range l.Lists {
		if _, dup := lists[list.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateList, list.ID)
		}
		lists[list.ID] = struct{}{}
		if d, ok := list.Date(); ok {
			k := DayKey(d)
			if other, dup := days[k]; dup {
				return fmt.Errorf("%w: %s and %s on %s", ErrDuplicateDay, other, list.ID, k)
			}
			days[k] = list.ID
		}

		items := make(map[string]struct{}, len(list.Items))
		for _, it := range list.Items {
			if _, dup := items[it.ID]; dup {
				return fmt.Errorf("%w: %s in list %s", ErrDuplicateItem, it.ID, list.ID)
			}
			items[it.ID] = struct{}{}
			if err := it.Validate(); err != nil {
				return fmt.Errorf("item %s in list %s: %w", it.ID, list.ID, err)
			}
		}
	}

	vendors := make(map[string]struct{}, len(l.Vendors))
	for _, v := range l.Vendors {
		if _, dup := vendors[v.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateVendor, v.ID)
		}
		vendors[v.ID] = struct{}{}
	}
	return nil
}

// ListIndex returns the position of the list with the given id, or -1.
func (l *Ledger) ListIndex(id string) int {
	for i := range l.Lists {
		if l.Lists[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemIndex returns the position of the item with the given id, or -1.
func (s ShoppingList) ItemIndex(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// VendorIndex returns the position of the vendor with the given id, or -1.
func (l *Ledger) VendorIndex(id string) int {
	for i := range l.Vendors {
		if l.Vendors[i].ID == id {
			return i
		}
	}
	return -1
}

// VendorName resolves a vendor id. The second result is false when the id is unknown.
func (l *Ledger) VendorName(id string) (string, bool) {
	if i := l.VendorIndex(id); i >= 0 {
		return l.Vendors[i].Name, true
	}
	return "", false
}

// ItemCount returns the number of items across all lists.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, list := range l.Lists {
		n += len(list.Items)
	}
	return n
}
