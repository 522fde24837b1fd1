package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/microshop/internal/order/dal/rabbitmq"
	"github.com/corray333/backend-labs/microshop/internal/order/service/models/message"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrDeliveriesClosed is returned by Serve when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// service represents the service layer interface.
type service interface {
	HandleMessage(ctx context.Context, msg message.Message) error
}

// Config describes the queue the consumer reads from.
type Config struct {
	Queue              string
	ConsumerTag        string
	Prefetch           int
	DeadLetterExchange string
}

// ConfigFromViper reads the rabbitmq.* consumer settings.
func ConfigFromViper() Config {
	queue := viper.GetString("rabbitmq.queue")
	if queue == "" {
		panic("rabbitmq.queue is not set in config")
	}

	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "order-svc"
	}

	return Config{
		Queue:              queue,
		ConsumerTag:        consumerTag,
		Prefetch:           viper.GetInt("rabbitmq.prefetch"),
		DeadLetterExchange: viper.GetString("rabbitmq.dead_letter_exchange"),
	}
}

// Consumer represents the RabbitMQ consumer transport.
type Consumer struct {
	service service
	cfg     Config
}

// NewConsumer creates a new Consumer.
func NewConsumer(service service, cfg Config) *Consumer {
	return &Consumer{
		service: service,
		cfg:     cfg,
	}
}

// Serve declares the queue on client and handles deliveries until ctx is done
// or the broker closes the channel.
func (c *Consumer) Serve(ctx context.Context, client *rabbitmq.Client) error {
	var args amqp.Table
	if c.cfg.DeadLetterExchange != "" {
		args = amqp.Table{"x-dead-letter-exchange": c.cfg.DeadLetterExchange}
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    c.cfg.Queue,
		Durable: true,
		Args:    args,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if c.cfg.Prefetch > 0 {
		if err := client.Qos(c.cfg.Prefetch); err != nil {
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	msgs, err := client.Consume(rabbitmq.ConsumeConfig{
		Queue:    queue.Name,
		Consumer: c.cfg.ConsumerTag,
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("Consumer started", "queue", queue.Name, "consumer_tag", c.cfg.ConsumerTag)

	return c.consume(ctx, msgs)
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping consumer")

			return nil
		case msg, ok := <-msgs:
			if !ok {
				slog.Warn("Message channel closed")

				return ErrDeliveriesClosed
			}

			c.handleDelivery(ctx, msg)
		}
	}
}

// handleDelivery hands msg to the service. Failed messages are rejected without
// requeue so a poison message cannot loop; a configured DLX keeps them.
func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("order-svc").Start(ctx, "Consumer.handleDelivery")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.destination", c.cfg.Queue),
		attribute.Int64("messaging.delivery_tag", int64(msg.DeliveryTag)),
	)

	err := c.service.HandleMessage(ctx, toMessage(msg))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handle message")
		slog.Error("Failed to handle message", "delivery_tag", msg.DeliveryTag, "error", err)

		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)
	}
}

func toMessage(d amqp.Delivery) message.Message {
	return message.Message{
		DeliveryTag: d.DeliveryTag,
		MessageID:   d.MessageId,
		ContentType: d.ContentType,
		Body:        d.Body,
		Redelivered: d.Redelivered,
		ReceivedAt:  time.Now(),
	}
}
