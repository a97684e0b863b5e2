package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      uint64          `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID     uint64      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	To          OrderStatus `json:"to"`
	ChangedAt   time.Time   `json:"changedAt"`
}

type PaymentSettledEvent struct {
	OrderID   uint64        `json:"orderId"`
	IntentID  string        `json:"intentId"`
	Status    PaymentStatus `json:"status"`
	SettledAt time.Time     `json:"settledAt"`
}
