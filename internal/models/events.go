package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderPaid      = "ORDER_PAID"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
	EventTypePaymentSettled = "PAYMENT_SETTLED"
	EventTypePaymentFailed  = "PAYMENT_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a checkout produces an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID  string          `json:"order_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
	Items    []CartLineItem  `json:"items"`
}

// OrderPaidEvent published once a payment settles against an order
type OrderPaidEvent struct {
	BaseEvent
	OrderID string          `json:"order_id"`
	Method  string          `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
}

// OrderCancelledEvent published when an order is cancelled
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// PaymentSettledEvent arrives from the out-of-band settlement channel
// (orders are created unpaid and paid for over WhatsApp or bank transfer;
// whoever confirms the payment emits this event).
type PaymentSettledEvent struct {
	BaseEvent
	OrderID   string          `json:"order_id"`
	Method    string          `json:"method"`
	PayerName string          `json:"payer_name"`
	Amount    decimal.Decimal `json:"amount"`
	SettledAt time.Time       `json:"settled_at"`
}

// PaymentFailedEvent arrives when an out-of-band payment is rejected
type PaymentFailedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}
