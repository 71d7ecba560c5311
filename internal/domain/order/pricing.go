package order

import (
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/cart"
)

// gstRate is the rate for each GST component. SGST and CGST are both levied
// at 2.5%, summing to the 5% shown on the bill.
var gstRate = decimal.RequireFromString("0.025")

// Pricing holds the computed amounts for a cart at checkout.
type Pricing struct {
	Subtotal decimal.Decimal
	SGST     decimal.Decimal
	CGST     decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// Price computes the bill for a cart: subtotal is exact, each GST component is
// rounded to cents independently, and the final total is subtotal plus both
// components.
func Price(c cart.Cart) Pricing {
	subtotal := c.Subtotal()
	sgst := subtotal.Mul(gstRate).Round(2)
	cgst := subtotal.Mul(gstRate).Round(2)
	tax := sgst.Add(cgst)

	return Pricing{
		Subtotal: subtotal,
		SGST:     sgst,
		CGST:     cgst,
		TaxTotal: tax,
		Total:    subtotal.Add(tax),
	}
}
