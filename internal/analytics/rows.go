package analytics

import (
	"sort"

	"spesa/internal/core"
)

// PurchaseRows flattens every bought item into a dated row, oldest first.
// Vendor ids are resolved to names; unknown ids leave the vendor blank.
func PurchaseRows(l *core.Ledger) []core.PurchaseRow {
	purchases := l.Purchases(core.Bought)
	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].Date.Before(purchases[j].Date)
	})

	rows := make([]core.PurchaseRow, 0, len(purchases))
	for _, p := range purchases {
		row := core.PurchaseRow{
			Date:          core.DayKey(p.Date),
			Name:          p.Item.Name,
			Unit:          p.Item.Unit,
			Category:      p.Item.Category,
			Quantity:      p.Item.PurchasedAmount,
			Price:         p.Item.PaidPrice,
			PaymentStatus: p.Item.PaymentStatus,
			PaymentMethod: p.Item.PaymentMethod,
		}
		if p.Item.VendorID != nil {
			row.Vendor, _ = l.VendorName(*p.Item.VendorID)
		}
		rows = append(rows, row)
	}
	return rows
}
