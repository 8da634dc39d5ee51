package analytics

import (
	"fmt"
	"time"

	"spesa/internal/core"
)

var today = time.Date(2025, 6, 30, 12, 0, 0, 0, time.Local)

func daysAgo(n int) time.Time {
	return core.StartOfDay(today).AddDate(0, 0, -n)
}

// put appends item to the list for date, creating the list when needed.
func put(l *core.Ledger, date time.Time, item core.ShoppingItem) {
	id := core.DayKey(date)
	i := l.ListIndex(id)
	if i < 0 {
		l.Lists = append(l.Lists, core.NewShoppingList(date))
		i = len(l.Lists) - 1
	}
	item.ID = fmt.Sprintf("%s-%d", id, len(l.Lists[i].Items))
	l.Lists[i].Items = append(l.Lists[i].Items, item)
}

func bought(name, unit string, qty, price float64) core.ShoppingItem {
	return core.ShoppingItem{
		Name:            name,
		Amount:          qty,
		Unit:            unit,
		Category:        "Dairy",
		Status:          core.StatusBought,
		PurchasedAmount: core.Float(qty),
		PaidPrice:       core.Float(price),
		PaymentStatus:   core.PaymentPaid,
	}
}
