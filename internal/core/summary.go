package core

import "time"

// MasterItem is a derived cross-list rollup for one (name, unit) pair.
type MasterItem struct {
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	Category         string  `json:"category"`
	LastPricePerUnit float64 `json:"lastPricePerUnit"`
	TotalQuantity    float64 `json:"totalQuantity"`
	TotalSpend       float64 `json:"totalSpend"`
	PurchaseCount    int     `json:"purchaseCount"`
}

// LatestPurchase is the most recent priced purchase of an item. Found is false
// for items never bought with both price and quantity.
type LatestPurchase struct {
	Found        bool    `json:"found"`
	PricePerUnit float64 `json:"pricePerUnit,omitempty"`
	VendorID     *string `json:"vendorId,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`
}

type (
	SuggestionStatus string
	Priority         string
)

const (
	SuggestionDepleted   SuggestionStatus = "depleted"
	SuggestionGettingLow SuggestionStatus = "getting-low"

	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is a restock hint derived from an item's purchase cadence.
type Suggestion struct {
	Name          string           `json:"name"`
	Unit          string           `json:"unit"`
	Category      string           `json:"category"`
	Status        SuggestionStatus `json:"status"`
	Priority      Priority         `json:"priority"`
	CycleDays     int              `json:"cycleDays"`
	DaysSinceLast int              `json:"daysSinceLast"`
	LastPurchase  string           `json:"lastPurchase"`
}

// Amount is a named total, used for category and vendor breakdowns.
type Amount struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// TimeSeries holds parallel label/value sequences in chronological order.
type TimeSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Summary is the windowed spending report for a period.
type Summary struct {
	Period        Period     `json:"period"`
	From          time.Time  `json:"from"`
	To            time.Time  `json:"to"`
	TotalSpend    float64    `json:"totalSpend"`
	UniqueItems   int        `json:"uniqueItems"`
	AverageDaily  float64    `json:"averageDaily"`
	TopCategory   string     `json:"topCategory"`
	TopVendor     string     `json:"topVendor"`
	ByCategory    []Amount   `json:"byCategory"`
	ByVendor      []Amount   `json:"byVendor"`
	Daily         TimeSeries `json:"daily"`
	PurchaseCount int        `json:"purchaseCount"`
}

// Forecast extrapolates spending from the whole purchase history.
type Forecast struct {
	Daily         float64 `json:"daily"`
	Monthly       float64 `json:"monthly"`
	TotalSpend    float64 `json:"totalSpend"`
	SpanDays      int     `json:"spanDays"`
	PurchaseCount int     `json:"purchaseCount"`
}

// PurchaseRow is a flat, display-ready record of one bought item.
type PurchaseRow struct {
	Date          string        `json:"date"`
	Name          string        `json:"name"`
	Unit          string        `json:"unit"`
	Category      string        `json:"category"`
	Quantity      *float64      `json:"quantity,omitempty"`
	Price         *float64      `json:"price,omitempty"`
	Vendor        string        `json:"vendor,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
}

// PurchaseBatch is what receipt extraction produces.
type PurchaseBatch struct {
	Date  string      `json:"date"`
	Items []BatchLine `json:"items"`
}

type BatchLine struct {
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Price             float64 `json:"price"`
	Unit              string  `json:"unit,omitempty"`
	SuggestedCategory string  `json:"suggestedCategory,omitempty"`
}
