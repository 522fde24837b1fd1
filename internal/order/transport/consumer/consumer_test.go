package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/microshop/internal/order/service/models/message"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecord struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	records []ackRecord
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, ackRecord{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, ackRecord{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) snapshot() []ackRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ackRecord(nil), a.records...)
}

type fakeService struct {
	mu       sync.Mutex
	received []message.Message
	failOn   map[string]bool
}

func (s *fakeService) HandleMessage(_ context.Context, msg message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, msg)
	if s.failOn[string(msg.Body)] {
		return errors.New("handler failed")
	}
	return nil
}

func delivery(ack amqp.Acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  tag,
		MessageId:    "msg",
		ContentType:  "text/plain",
		Body:         []byte(body),
	}
}

func TestConsumeAcksAndNacks(t *testing.T) {
	ack := &fakeAcknowledger{}
	svc := &fakeService{failOn: map[string]bool{"bad": true}}
	c := NewConsumer(svc, Config{Queue: "ordersQueue"})

	msgs := make(chan amqp.Delivery, 3)
	msgs <- delivery(ack, 1, "hello")
	msgs <- delivery(ack, 2, "bad")
	msgs <- delivery(ack, 3, "world")
	close(msgs)

	err := c.consume(context.Background(), msgs)
	require.ErrorIs(t, err, ErrDeliveriesClosed)

	assert.Equal(t, []ackRecord{
		{tag: 1, ack: true},
		{tag: 2, ack: false, requeue: false},
		{tag: 3, ack: true},
	}, ack.snapshot())

	require.Len(t, svc.received, 3)
	assert.Equal(t, "hello", string(svc.received[0].Body))
	assert.Equal(t, "text/plain", svc.received[0].ContentType)
	assert.EqualValues(t, 1, svc.received[0].DeliveryTag)
	assert.False(t, svc.received[0].ReceivedAt.IsZero())
}

func TestConsumeStopsOnContextCancel(t *testing.T) {
	c := NewConsumer(&fakeService{}, Config{Queue: "ordersQueue"})
	msgs := make(chan amqp.Delivery)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.consume(ctx, msgs)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConfigFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	assert.Panics(t, func() { ConfigFromViper() })

	viper.Set("rabbitmq.queue", "ordersQueue")
	viper.Set("rabbitmq.prefetch", 5)
	viper.Set("rabbitmq.dead_letter_exchange", "orders.dlx")

	cfg := ConfigFromViper()
	assert.Equal(t, Config{
		Queue:              "ordersQueue",
		ConsumerTag:        "order-svc",
		Prefetch:           5,
		DeadLetterExchange: "orders.dlx",
	}, cfg)
}
