package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	// Insert stores o and returns the stored row with its generated id
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// List returns every order, newest first
	List(ctx context.Context) ([]order.Order, error)
}
