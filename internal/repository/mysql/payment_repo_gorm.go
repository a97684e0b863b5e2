package mysql

import (
	"context"
	"errors"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"
	"gorm.io/gorm"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isUniqueViolation(err) {
		// one payment per order
		return domain.ErrConflict
	}
	return err
}

func (r *paymentRepo) FindByOrderID(ctx context.Context, orderID uint64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ApplyWebhook makes webhook application idempotent: the provider event id is
// inserted into the ledger inside the same transaction as the state changes,
// so a replayed event either fully applies once or is a no-op.
func (r *paymentRepo) ApplyWebhook(ctx context.Context, event domain.WebhookEvent) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := domain.PaymentEvent{EventID: event.EventID, Type: event.Type}
		if err := tx.Create(&ledger).Error; err != nil {
			if isUniqueViolation(err) {
				// already applied
				return nil
			}
			return err
		}

		var p domain.Payment
		if err := tx.Where("order_id = ?", event.OrderID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPaymentNotFound
			}
			return err
		}

		switch event.Type {
		case domain.EventPaymentSucceeded:
			if err := tx.Model(&p).Update("status", domain.PaymentSucceeded).Error; err != nil {
				return err
			}
			// advance the paid order; it must still be pending
			res := tx.Model(&domain.Order{}).
				Where("id = ? AND status = ?", event.OrderID, domain.StatusPending).
				Update("status", domain.StatusProcessing)
			if res.Error != nil {
				return res.Error
			}
		case domain.EventPaymentFailed:
			// order stays pending so the customer may retry payment
			if err := tx.Model(&p).Update("status", domain.PaymentFailed).Error; err != nil {
				return err
			}
		default:
			return domain.Validationf("unsupported webhook event type %q", event.Type)
		}

		applied = true
		return nil
	})
	if err != nil {
		if isLockConflict(err) {
			return false, domain.ErrConflict
		}
		return false, err
	}
	return applied, nil
}
