package repository

import (
	"context"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
)

// PaymentRepository owns payments and the applied-webhook event ledger.
type PaymentRepository interface {
	// Create persists a payment row; a second payment for the same order
	// violates the unique order index and returns domain.ErrConflict.
	Create(ctx context.Context, p *domain.Payment) error

	FindByOrderID(ctx context.Context, orderID uint64) (*domain.Payment, error)

	// ApplyWebhook records the provider event id and applies its effect
	// (payment status, and the pending→processing order advance on
	// success) in one transaction. A previously applied event id returns
	// applied=false with no error and no state change.
	ApplyWebhook(ctx context.Context, event domain.WebhookEvent) (applied bool, err error)
}

// UserRepository backs registration and login.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
}
