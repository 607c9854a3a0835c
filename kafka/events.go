package kafka

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated         = "order.created"
	EventTypeOrderCancelled       = "order.cancelled"
	EventTypeOrderStatusChanged   = "order.status_changed"
	EventTypePaymentStatusChanged = "payment.status_changed"
)

// Kafka topics
const (
	TopicOrderEvents   = "order-events"
	TopicPaymentEvents = "payment-events"
)

// OrderEvent is emitted after an order is created, cancelled or moved.
type OrderEvent struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	OrderID        uint            `json:"order_id"`
	OrderCode      string          `json:"order_code"`
	CustomerID     uint            `json:"customer_id"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Timestamp      time.Time       `json:"timestamp"`
}

// PaymentEvent is emitted after a payment row changes status.
type PaymentEvent struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	PaymentID      uint            `json:"payment_id"`
	OrderID        uint            `json:"order_id"`
	OrderCode      string          `json:"order_code"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	// Source names the entry point that caused the change, e.g. IPN.
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher is what the use cases publish domain events through.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	PublishPaymentEvent(ctx context.Context, event PaymentEvent) error
}

// NopPublisher drops every event. It is used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) error     { return nil }
func (NopPublisher) PublishPaymentEvent(context.Context, PaymentEvent) error { return nil }
