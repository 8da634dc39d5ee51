// Package core provides the ledger data model and its primitives.
//
// This file contains the parsing of user-entered quantities and prices.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to a float.
//
// It accepts both dot (12.5) and comma (12,5) decimal separators, ignores
// thousands separators written as spaces or apostrophes, and rejects negative
// values. Zero is accepted: a free item is still a purchase.
//
// Examples:
//
//	ParseAmount("12.5")    -> 12.5, nil
//	ParseAmount("12,5")    -> 12.5, nil
//	ParseAmount("50 000")  -> 50000, nil
//	ParseAmount("-1")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.NewReplacer(" ", "", "'", "", "_", "").Replace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// RoundAmount rounds half away from zero to the given number of decimal places.
func RoundAmount(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
