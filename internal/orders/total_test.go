package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name         string
		items        []DetailedCartItem
		wantSubtotal string
		wantShipping string
		wantTotal    string
	}{
		{
			name: "subtotal at threshold ships free",
			items: []DetailedCartItem{
				{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("50.00")},
			},
			wantSubtotal: "100",
			wantShipping: "0",
			wantTotal:    "100",
		},
		{
			name: "just below threshold pays shipping",
			items: []DetailedCartItem{
				{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("99.99")},
			},
			wantSubtotal: "99.99",
			wantShipping: "9.99",
			wantTotal:    "109.98",
		},
		{
			name: "multiple lines sum per quantity",
			items: []DetailedCartItem{
				{ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("19.99")},
				{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("5.00")},
			},
			wantSubtotal: "64.97",
			wantShipping: "9.99",
			wantTotal:    "74.96",
		},
		{
			name:         "empty cart has no shipping",
			items:        nil,
			wantSubtotal: "0",
			wantShipping: "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotal(tt.items)
			require.True(t, totals.Subtotal.Equal(decimal.RequireFromString(tt.wantSubtotal)),
				"subtotal: got %s, want %s", totals.Subtotal, tt.wantSubtotal)
			require.True(t, totals.Shipping.Equal(decimal.RequireFromString(tt.wantShipping)),
				"shipping: got %s, want %s", totals.Shipping, tt.wantShipping)
			require.True(t, totals.Total.Equal(decimal.RequireFromString(tt.wantTotal)),
				"total: got %s, want %s", totals.Total, tt.wantTotal)
		})
	}
}
