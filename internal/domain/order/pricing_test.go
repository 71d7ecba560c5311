package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/teamates/cafe-api/internal/domain/cart"
)

func line(price string, qty int) cart.Item {
	return cart.Item{
		ID:        "l-" + price,
		CatalogID: "c-" + price,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		items    []cart.Item
		subtotal string
		sgst     string
		total    string
	}{
		{
			name:     "round amounts",
			items:    []cart.Item{line("25.00", 2)},
			subtotal: "50.00",
			sgst:     "1.25",
			total:    "52.50",
		},
		{
			name:     "empty cart",
			items:    nil,
			subtotal: "0",
			sgst:     "0.00",
			total:    "0.00",
		},
		{
			name:     "rounding to cents",
			items:    []cart.Item{line("9.99", 1)},
			subtotal: "9.99",
			sgst:     "0.25", // 0.24975 rounds up
			total:    "10.49",
		},
		{
			name:     "multiple lines",
			items:    []cart.Item{line("20.00", 3), line("15.50", 2)},
			subtotal: "91.00",
			sgst:     "2.28", // 2.275 rounds half away from zero
			total:    "95.56",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Price(cart.New(tt.items...))

			assert.True(t, decimal.RequireFromString(tt.subtotal).Equal(p.Subtotal), "subtotal %s", p.Subtotal)
			assert.True(t, decimal.RequireFromString(tt.sgst).Equal(p.SGST), "sgst %s", p.SGST)
			assert.True(t, p.SGST.Equal(p.CGST), "sgst %s != cgst %s", p.SGST, p.CGST)
			assert.True(t, p.SGST.Add(p.CGST).Equal(p.TaxTotal), "tax total %s", p.TaxTotal)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(p.Total), "total %s", p.Total)
		})
	}
}

func TestNewTokenShape(t *testing.T) {
	for range 200 {
		tok := NewToken()
		assert.Len(t, tok, 4)
		assert.GreaterOrEqual(t, tok[0], byte('A'))
		assert.LessOrEqual(t, tok[0], byte('Z'))
		assert.NotEqual(t, byte('0'), tok[1], "number part is 100-999")
	}
}
