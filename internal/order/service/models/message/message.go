package message

import "time"

// Message is a delivery read from the orders queue. The body is opaque.
type Message struct {
	DeliveryTag uint64
	MessageID   string
	ContentType string
	Body        []byte
	Redelivered bool
	ReceivedAt  time.Time
}
