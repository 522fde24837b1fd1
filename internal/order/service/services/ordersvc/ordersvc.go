package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/microshop/internal/order/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/microshop/internal/order/service/models/message"
	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "order-svc"

// ErrInvalidOrder is returned by CreateOrder when the order fails validation.
var ErrInvalidOrder = errors.New("invalid order")

// OrderService is a service for managing orders.
type OrderService struct {
	orderRepo iorderrepo.IOrderRepository
	now       func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil {
		panic("order repository is not set")
	}

	return s
}

// WithOrderRepository sets the order repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = repo
	}
}

// WithClock overrides the source of default order dates.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// ListOrders returns every stored order, newest first. Never returns a nil slice on success.
func (s *OrderService) ListOrders(ctx context.Context) ([]order.Order, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list orders")

		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if orders == nil {
		orders = []order.Order{}
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))

	return orders, nil
}

// CreateOrder validates o and stores it. A zero OrderDate is replaced with the current time.
func (s *OrderService) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := o.Validate(); err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}

	o.ID = 0
	if o.OrderDate.IsZero() {
		o.OrderDate = s.now().UTC()
	}

	created, err := s.orderRepo.Insert(ctx, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert order")

		return order.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	span.SetAttributes(attribute.Int64("order.id", created.ID))

	return created, nil
}

// HandleMessage processes a delivery from the orders queue.
// Payloads carry no schema, so the message is only logged.
func (s *OrderService) HandleMessage(ctx context.Context, msg message.Message) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "OrderService.HandleMessage")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("messaging.delivery_tag", int64(msg.DeliveryTag)),
		attribute.String("messaging.message_id", msg.MessageID),
	)

	slog.InfoContext(ctx, "Received message",
		"delivery_tag", msg.DeliveryTag,
		"message_id", msg.MessageID,
		"content_type", msg.ContentType,
		"redelivered", msg.Redelivered,
		"received_at", msg.ReceivedAt,
		"body", string(msg.Body),
	)

	return nil
}
