package core

import (
	"errors"
)

const (
	StatusPending ItemStatus = "pending"
	StatusBought  ItemStatus = "bought"

	PaymentDue  PaymentStatus = "due"
	PaymentPaid PaymentStatus = "paid"
)

type (
	ItemStatus    string
	PaymentStatus string

	// Ledger is the full persisted state of one household or cafe.
	Ledger struct {
		Lists             []ShoppingList      `json:"lists"`
		CustomCategories  []string            `json:"customCategories"`
		Vendors           []Vendor            `json:"vendors"`
		CategoryVendorMap map[string]string   `json:"categoryVendorMap"`
		ItemInfoMap       map[string]ItemInfo `json:"itemInfoMap"`
	}

	// ShoppingList is one calendar day's shopping/purchase record.
	ShoppingList struct {
		ID        string         `json:"id"`
		Name      string         `json:"name"`
		CreatedAt string         `json:"createdAt"`
		Items     []ShoppingItem `json:"items"`
	}

	ShoppingItem struct {
		ID       string     `json:"id"`
		Name     string     `json:"name"`
		Amount   float64    `json:"amount"`
		Unit     string     `json:"unit"`
		Category string     `json:"category"`
		Status   ItemStatus `json:"status"`

		// Bought-only facts. PaidPrice is the line total, not a unit price.
		PurchasedAmount *float64      `json:"purchasedAmount,omitempty"`
		PaidPrice       *float64      `json:"paidPrice,omitempty"`
		PaymentStatus   PaymentStatus `json:"paymentStatus,omitempty"`
		PaymentMethod   string        `json:"paymentMethod,omitempty"`
		VendorID        *string       `json:"vendorId,omitempty"`

		EstimatedPrice *float64 `json:"estimatedPrice,omitempty"`

		// ReceiptImage is only ever present in hand-edited or legacy backups; imports drop it.
		ReceiptImage string `json:"receiptImage,omitempty"`
	}

	Vendor struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// ItemInfo holds the canonical unit and category for an item name.
	ItemInfo struct {
		Unit     string `json:"unit"`
		Category string `json:"category"`
	}
)

// BuiltinCategories is the fixed category enumeration. Anything else lives in Ledger.CustomCategories.
var BuiltinCategories = []string{
	"Dairy",
	"Meat & Poultry",
	"Produce",
	"Bakery",
	"Beverages",
	"Coffee & Tea",
	"Pantry",
	"Frozen",
	"Snacks",
	"Cleaning",
	"Disposables",
	"Other",
}

const (
	DefaultCategory = "Other"
	DefaultUnit     = "pcs"
)

var (
	ErrInvalidFormat    = errors.New("invalid backup file format")
	ErrInvalidDate      = errors.New("invalid receipt date")
	ErrDuplicateList    = errors.New("duplicate list id")
	ErrDuplicateDay     = errors.New("more than one list for the same day")
	ErrDuplicateItem    = errors.New("duplicate item id")
	ErrDuplicateVendor  = errors.New("duplicate vendor id")
	ErrNegativePrice    = errors.New("paid price cannot be negative")
	ErrNegativeQuantity = errors.New("purchased amount cannot be negative")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidStatus    = errors.New("invalid status")
)

// IsBuiltinCategory reports whether name is part of the fixed enumeration.
func IsBuiltinCategory(name string) bool {
	for _, c := range BuiltinCategories {
		if c == name {
			return true
		}
	}
	return false
}

// PricePerUnit returns PaidPrice/PurchasedAmount when both are known and the amount is positive.
func (it ShoppingItem) PricePerUnit() (float64, bool) {
	if it.PaidPrice == nil || it.PurchasedAmount == nil || *it.PurchasedAmount <= 0 {
		return 0, false
	}
	return *it.PaidPrice / *it.PurchasedAmount, true
}

// IsBought reports whether the item carries purchase facts.
func (it ShoppingItem) IsBought() bool {
	return it.Status == StatusBought
}

// Validate checks the per-item invariants.
func (it ShoppingItem) Validate() error {
	if it.PaidPrice != nil && *it.PaidPrice < 0 {
		return ErrNegativePrice
	}
	if it.PurchasedAmount != nil && *it.PurchasedAmount < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Float returns a pointer to v, for the optional numeric item fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s, for the optional vendor reference.
func String(s string) *string {
	return &s
}
