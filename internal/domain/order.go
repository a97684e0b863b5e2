package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the adjacency table for the order lifecycle.
// delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint64          `json:"userId" gorm:"not null;index:idx_orders_user_status"`
	OrderNumber     string          `json:"orderNumber" gorm:"size:20;uniqueIndex;not null"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"size:20;not null;default:'pending';index:idx_orders_user_status"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:text;not null"`
	Notes           string          `json:"notes" gorm:"type:text"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}

// OrderItem snapshots the product price at order time; later price edits
// never change a placed order.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"not null;index"`
	ProductID uint64          `json:"productId" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// OrderLine is a requested (product, quantity) pair before validation.
type OrderLine struct {
	ProductID uint64
	Quantity  int
}

// MergeLines collapses duplicate product ids, summing quantities, so stock is
// validated against the true combined demand.
func MergeLines(lines []OrderLine) []OrderLine {
	merged := make([]OrderLine, 0, len(lines))
	index := make(map[uint64]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
