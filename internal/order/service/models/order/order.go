package order

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyProductName    = errors.New("product name is required")
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrNonPositivePrice    = errors.New("price must be positive")
	ErrQuantityTooLarge    = errors.New("quantity is out of range")
	ErrPricePrecision      = errors.New("price must have at most two decimal places")
	ErrPriceTooLarge       = errors.New("price is out of range")
)

// MaxPrice is the largest price a NUMERIC(10,2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// Order represents an order in the system. ID is assigned by the store.
type Order struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	OrderDate   time.Time       `json:"order_date"`
}

// Validate reports the first field that makes the order unfit for creation.
func (o Order) Validate() error {
	switch {
	case strings.TrimSpace(o.ProductName) == "":
		return ErrEmptyProductName
	case o.Quantity <= 0:
		return ErrNonPositiveQuantity
	case o.Quantity > math.MaxInt32:
		return ErrQuantityTooLarge
	case !o.Price.IsPositive():
		return ErrNonPositivePrice
	case !o.Price.Equal(o.Price.Truncate(2)):
		return ErrPricePrecision
	case o.Price.GreaterThan(MaxPrice):
		return ErrPriceTooLarge
	}

	return nil
}
