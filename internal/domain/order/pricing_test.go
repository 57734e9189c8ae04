package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(price string, qty int) LineItem {
	return LineItem{UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []LineItem
		percent      int
		wantSubtotal string
		wantDiscount string
		wantTotal    string
		wantClamped  bool
	}{
		{
			name:         "no coupon",
			items:        []LineItem{item("10.00", 2)},
			percent:      0,
			wantSubtotal: "20.00",
			wantDiscount: "0.00",
			wantTotal:    "20.00",
		},
		{
			name:         "ten percent off",
			items:        []LineItem{item("10.00", 2)},
			percent:      10,
			wantSubtotal: "20.00",
			wantDiscount: "2.00",
			wantTotal:    "18.00",
		},
		{
			name:         "multiple lines sum exactly",
			items:        []LineItem{item("3.33", 3), item("0.01", 1)},
			percent:      0,
			wantSubtotal: "10.00",
			wantDiscount: "0.00",
			wantTotal:    "10.00",
		},
		{
			name:         "rounding applied once on the subtotal",
			items:        []LineItem{item("0.05", 1), item("0.05", 1)},
			percent:      15,
			wantSubtotal: "0.10",
			// 15% of 0.10 = 0.015, half-up to 0.02. Per-line rounding
			// would have produced 0.01 + 0.01 = 0.02 here but diverges
			// for other carts; the single-rounding rule is the contract.
			wantDiscount: "0.02",
			wantTotal:    "0.08",
		},
		{
			name:         "hundred percent leaves zero total",
			items:        []LineItem{item("12.34", 1)},
			percent:      100,
			wantSubtotal: "12.34",
			wantDiscount: "12.34",
			wantTotal:    "0.00",
		},
		{
			name:         "percent over hundred clamps at subtotal",
			items:        []LineItem{item("10.00", 1)},
			percent:      150,
			wantSubtotal: "10.00",
			wantDiscount: "10.00",
			wantTotal:    "0.00",
			wantClamped:  true,
		},
		{
			name:         "negative percent treated as zero",
			items:        []LineItem{item("10.00", 1)},
			percent:      -10,
			wantSubtotal: "10.00",
			wantDiscount: "0.00",
			wantTotal:    "10.00",
		},
		{
			name:         "empty cart is all zeros",
			items:        nil,
			percent:      10,
			wantSubtotal: "0.00",
			wantDiscount: "0.00",
			wantTotal:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := ComputeTotals(tt.items, tt.percent)

			assert.True(t, decimal.RequireFromString(tt.wantSubtotal).Equal(got.Subtotal),
				"subtotal: want %s, got %s", tt.wantSubtotal, got.Subtotal)
			assert.True(t, decimal.RequireFromString(tt.wantDiscount).Equal(got.Discount),
				"discount: want %s, got %s", tt.wantDiscount, got.Discount)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(got.Total),
				"total: want %s, got %s", tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantClamped, clamped)

			// Invariants hold for every input.
			assert.True(t, got.Total.Equal(got.Subtotal.Sub(got.Discount)))
			assert.False(t, got.Total.IsNegative())
			assert.False(t, got.Discount.IsNegative())
		})
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	items := []LineItem{item("19.99", 3), item("4.37", 7), item("0.01", 13)}

	first, _ := ComputeTotals(items, 17)
	for range 100 {
		got, _ := ComputeTotals(items, 17)
		require.True(t, first.Subtotal.Equal(got.Subtotal))
		require.True(t, first.Discount.Equal(got.Discount))
		require.True(t, first.Total.Equal(got.Total))
	}
}
