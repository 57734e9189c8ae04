package order

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals holds the server-derived money amounts for an order.
// Total = Subtotal - Discount always holds, and Total is never negative.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives order totals from line-item price snapshots and a
// resolved discount percentage. All arithmetic is exact decimal.
//
// The discount is rounded to 2 places exactly once, half-up, on the order
// subtotal rather than per line, so no cumulative rounding error can
// accumulate. A discount exceeding the subtotal is clamped so the total
// floors at zero; the returned flag reports the clamp so callers can log
// it as a data-integrity warning.
func ComputeTotals(items []LineItem, discountPercent int) (Totals, bool) {
	subtotal := decimal.Zero
	for _, it := range items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	discount := subtotal.
		Mul(decimal.NewFromInt(int64(discountPercent))).
		Div(hundred).
		Round(2)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	clamped := false
	if discount.GreaterThan(subtotal) {
		discount = subtotal
		clamped = true
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, clamped
}
