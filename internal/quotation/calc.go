package quotation

import (
	"github.com/diewo77/autoparts/internal/cart"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is used when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.05")

// Calculator applies one flat tax rate to a cart.
type Calculator struct {
	TaxRate decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Final    decimal.Decimal
}

// Compute rounds the tax to cents; the final amount is subtotal plus that tax.
func (c Calculator) Compute(lines []cart.LineItem) Totals {
	subtotal := cart.Subtotal(lines)
	tax := subtotal.Mul(c.TaxRate).Round(2)
	return Totals{Subtotal: subtotal, Tax: tax, Final: subtotal.Add(tax)}
}
