package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
	"github.com/corray333/backend-labs/microshop/internal/order/service/services/ordersvc"
	"github.com/corray333/backend-labs/microshop/pkg/http/render"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	invalidOrderMessage = "Invalid order data"
	createFailedMessage = "Error creating new order"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
}

var validate = newValidator()

// newValidator lets gt=0 apply to decimal prices.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int             `json:"quantity"     validate:"gt=0"`
	Price       decimal.Decimal `json:"price"        validate:"gt=0"`
	OrderDate   *time.Time      `json:"order_date"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validate.Struct(r)
}

func (r *createOrderRequest) toModel() order.Order {
	o := order.Order{
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		Price:       r.Price,
	}
	if r.OrderDate != nil {
		o.OrderDate = *r.OrderDate
	}

	return o
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, r, http.StatusBadRequest, invalidOrderMessage)
		slog.ErrorContext(r.Context(), "Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		render.Error(w, r, http.StatusBadRequest, invalidOrderMessage)
		slog.ErrorContext(r.Context(), "Error validating request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, ordersvc.ErrInvalidOrder) {
			render.Error(w, r, http.StatusBadRequest, invalidOrderMessage)
			slog.ErrorContext(r.Context(), "Order rejected", "error", err)

			return
		}

		render.Error(w, r, http.StatusInternalServerError, createFailedMessage)
		slog.ErrorContext(r.Context(), "Error creating order", "error", err)

		return
	}

	render.JSON(w, r, http.StatusCreated, created)
}
