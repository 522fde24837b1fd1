package order

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	valid := Order{ProductName: "Product A", Quantity: 2, Price: decimal.RequireFromString("10.99")}

	tests := []struct {
		name   string
		mutate func(o *Order)
		want   error
	}{
		{name: "valid", mutate: func(o *Order) {}, want: nil},
		{name: "empty name", mutate: func(o *Order) { o.ProductName = "" }, want: ErrEmptyProductName},
		{name: "blank name", mutate: func(o *Order) { o.ProductName = "   " }, want: ErrEmptyProductName},
		{name: "zero quantity", mutate: func(o *Order) { o.Quantity = 0 }, want: ErrNonPositiveQuantity},
		{name: "negative quantity", mutate: func(o *Order) { o.Quantity = -1 }, want: ErrNonPositiveQuantity},
		{name: "zero price", mutate: func(o *Order) { o.Price = decimal.Zero }, want: ErrNonPositivePrice},
		{name: "negative price", mutate: func(o *Order) { o.Price = decimal.NewFromInt(-5) }, want: ErrNonPositivePrice},
		{name: "max int32 quantity", mutate: func(o *Order) { o.Quantity = math.MaxInt32 }, want: nil},
		{name: "quantity above int32", mutate: func(o *Order) { o.Quantity = math.MaxInt32 + 1 }, want: ErrQuantityTooLarge},
		{name: "sub-cent price", mutate: func(o *Order) { o.Price = decimal.RequireFromString("0.001") }, want: ErrPricePrecision},
		{name: "trailing zero scale", mutate: func(o *Order) { o.Price = decimal.RequireFromString("10.990") }, want: nil},
		{name: "largest price", mutate: func(o *Order) { o.Price = MaxPrice }, want: nil},
		{name: "price above numeric range", mutate: func(o *Order) { o.Price = decimal.RequireFromString("100000000") }, want: ErrPriceTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			assert.ErrorIs(t, o.Validate(), tt.want)
		})
	}
}
