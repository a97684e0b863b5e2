package repository

import (
	"context"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID uint64
	Status domain.OrderStatus
	Limit  int
}

// OrderRepository owns the order tables and the transactional discipline
// around stock reservation. ReserveAndCreate and Transition run as single
// database transactions; partial effects are never visible.
type OrderRepository interface {
	// ReserveAndCreate locks every referenced product row, validates
	// activity and stock, decrements stock, snapshots unit prices into
	// order items, computes the total and creates the order. Lines must
	// already be merged per product. Returns domain.ErrProductNotFound,
	// domain.ErrProductInactive, *domain.InsufficientStockError or
	// domain.ErrConflict.
	ReserveAndCreate(ctx context.Context, order *domain.Order, lines []domain.OrderLine) error

	// Transition re-reads the order under lock, applies the state machine
	// and, when moving into cancelled, restores each item's product stock
	// in the same transaction. Returns *domain.InvalidTransitionError.
	Transition(ctx context.Context, orderID uint64, to domain.OrderStatus) (*domain.Order, error)

	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)

	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	DeliveredRevenue(ctx context.Context) (decimal.Decimal, error)
}
