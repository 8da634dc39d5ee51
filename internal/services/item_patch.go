package services

import (
	"fmt"

	"spesa/internal/core"
)

// ItemPatch is a partial item update; nil fields are left untouched. An
// empty VendorID clears the vendor reference.
type ItemPatch struct {
	Name            *string             `json:"name,omitempty"`
	Amount          *float64            `json:"amount,omitempty"`
	Unit            *string             `json:"unit,omitempty"`
	Category        *string             `json:"category,omitempty"`
	Status          *core.ItemStatus    `json:"status,omitempty"`
	PurchasedAmount *float64            `json:"purchasedAmount,omitempty"`
	PaidPrice       *float64            `json:"paidPrice,omitempty"`
	PaymentStatus   *core.PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod   *string             `json:"paymentMethod,omitempty"`
	VendorID        *string             `json:"vendorId,omitempty"`
	EstimatedPrice  *float64            `json:"estimatedPrice,omitempty"`
}

// Validate rejects values that would break item invariants.
func (p ItemPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return core.ErrEmptyName
	}
	if p.PaidPrice != nil && *p.PaidPrice < 0 {
		return core.ErrNegativePrice
	}
	if p.PurchasedAmount != nil && *p.PurchasedAmount < 0 {
		return core.ErrNegativeQuantity
	}
	if p.Amount != nil && *p.Amount < 0 {
		return core.ErrNegativeQuantity
	}
	if p.Status != nil && *p.Status != core.StatusPending && *p.Status != core.StatusBought {
		return fmt.Errorf("%w: status %q", core.ErrInvalidStatus, *p.Status)
	}
	if p.PaymentStatus != nil && *p.PaymentStatus != core.PaymentDue && *p.PaymentStatus != core.PaymentPaid {
		return fmt.Errorf("%w: payment status %q", core.ErrInvalidStatus, *p.PaymentStatus)
	}
	return nil
}

// Apply merges the patch into it.
func (p ItemPatch) Apply(it *core.ShoppingItem) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Amount != nil {
		it.Amount = *p.Amount
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.PurchasedAmount != nil {
		it.PurchasedAmount = core.Float(*p.PurchasedAmount)
	}
	if p.PaidPrice != nil {
		it.PaidPrice = core.Float(*p.PaidPrice)
	}
	if p.PaymentStatus != nil {
		it.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		it.PaymentMethod = *p.PaymentMethod
	}
	if p.VendorID != nil {
		if *p.VendorID == "" {
			it.VendorID = nil
		} else {
			it.VendorID = core.String(*p.VendorID)
		}
	}
	if p.EstimatedPrice != nil {
		it.EstimatedPrice = core.Float(*p.EstimatedPrice)
	}
}
