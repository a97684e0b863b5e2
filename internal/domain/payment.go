package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentRequiresConfirmation PaymentStatus = "requires_confirmation"
	PaymentSucceeded            PaymentStatus = "succeeded"
	PaymentFailed               PaymentStatus = "failed"
)

// Payment links an order to a provider-side payment intent. The unique index
// on OrderID enforces at most one payment per order.
type Payment struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"uniqueIndex;not null"`
	IntentID  string          `json:"intentId" gorm:"size:255;index;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency  string          `json:"currency" gorm:"size:3;not null"`
	Status    PaymentStatus   `json:"status" gorm:"size:32;not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// PaymentEvent records provider webhook events that have been applied.
// The unique EventID makes replayed deliveries no-ops.
type PaymentEvent struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID    string    `json:"eventId" gorm:"size:64;uniqueIndex;not null"`
	Type       string    `json:"type" gorm:"size:64;not null"`
	ReceivedAt time.Time `json:"receivedAt" gorm:"autoCreateTime"`
}

// Webhook event types delivered by the payment collaborator.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// WebhookEvent is the collaborator-delivered payload, already
// signature-verified upstream.
type WebhookEvent struct {
	EventID  string `json:"event_id"`
	Type     string `json:"type"`
	OrderID  uint64 `json:"order_id"`
	IntentID string `json:"intent_id"`
}

func (Payment) TableName() string      { return "payments" }
func (PaymentEvent) TableName() string { return "payment_events" }
