package google

import (
	"spesa/internal/core"
)

// buildValues lays out the header and one row per purchase. Numbers stay
// numeric so the sheet can sum them; unknown values are blank.
func buildValues(rows []core.PurchaseRow) [][]interface{} {
	values := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)

	for _, r := range rows {
		values = append(values, []interface{}{
			r.Date,
			r.Name,
			number(r.Quantity),
			r.Unit,
			number(r.Price),
			pricePerUnit(r),
			r.Category,
			r.Vendor,
			string(r.PaymentStatus),
			r.PaymentMethod,
		})
	}
	return values
}

func number(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func pricePerUnit(r core.PurchaseRow) interface{} {
	if r.Price == nil || r.Quantity == nil || *r.Quantity <= 0 {
		return ""
	}
	return core.RoundAmount(*r.Price / *r.Quantity, 2)
}
