// Package report renders ledger analytics as Markdown for terminals.
package report

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Formatter displays ledger amounts in one currency.
type Formatter struct {
	cur *money.Currency
}

// NewFormatter returns a formatter for an ISO 4217 code. Unknown codes fall
// back to a plain two-decimal rendering suffixed with the code.
func NewFormatter(code string) Formatter {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = &money.Currency{Code: code, Fraction: 2, Decimal: ".", Thousand: ",", Grapheme: code, Template: "1 $"}
	}
	return Formatter{cur: cur}
}

// Code returns the currency code.
func (f Formatter) Code() string { return f.cur.Code }

// Format renders v in the currency's minor units, rounded half away from zero.
func (f Formatter) Format(v float64) string {
	minor := decimal.NewFromFloat(v).Shift(int32(f.cur.Fraction)).Round(0).IntPart()
	return f.cur.Formatter().Format(minor)
}

// Quantity renders an amount without trailing zeros.
func Quantity(v float64) string {
	return decimal.NewFromFloat(v).Round(3).String()
}
