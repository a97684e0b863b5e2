package mysql

import (
	"errors"
	"sort"

	"context"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// ReserveAndCreate validates and reserves stock for every line, then creates
// the order and its items, all in one transaction. Product rows are locked in
// ascending id order so concurrent placements cannot deadlock on each other.
func (r *orderRepo) ReserveAndCreate(ctx context.Context, order *domain.Order, lines []domain.OrderLine) error {
	sorted := make([]domain.OrderLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]domain.OrderItem, 0, len(sorted))

		for _, line := range sorted {
			var p domain.Product
			if err := lockForUpdate(tx).First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrProductNotFound
				}
				return err
			}
			if !p.IsActive {
				return domain.ErrProductInactive
			}
			if p.StockQuantity < line.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   line.Quantity,
					Available:   p.StockQuantity,
				}
			}

			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock_quantity >= ?", p.ID, line.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// row changed between read and write; only possible without
				// row locks, treat as a retryable conflict
				return domain.ErrConflict
			}

			subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			items = append(items, domain.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		order.TotalAmount = total
		order.Items = items
		return tx.Create(order).Error
	})

	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err), isLockConflict(err):
		// order-number collision or serialization failure; the caller
		// retries with a fresh number
		return domain.ErrConflict
	default:
		return err
	}
}

// Transition applies the status state machine under a row lock. Moving into
// cancelled restores each item's product stock in the same transaction.
func (r *orderRepo) Transition(ctx context.Context, orderID uint64, to domain.OrderStatus) (*domain.Order, error) {
	var out domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := lockForUpdate(tx).First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		if !o.Status.CanTransitionTo(to) {
			return &domain.InvalidTransitionError{From: o.Status, To: to}
		}

		if err := tx.Where("order_id = ?", o.ID).Find(&o.Items).Error; err != nil {
			return err
		}

		if to == domain.StatusCancelled {
			for _, item := range o.Items {
				res := tx.Model(&domain.Product{}).
					Where("id = ?", item.ProductID).
					Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity))
				if res.Error != nil {
					return res.Error
				}
			}
		}

		if err := tx.Model(&domain.Order{}).Where("id = ?", o.ID).
			Update("status", to).Error; err != nil {
			return err
		}
		o.Status = to
		out = o
		return nil
	})

	if err != nil {
		if isLockConflict(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return &out, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []domain.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	type row struct {
		Status domain.OrderStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.N
	}
	return out, nil
}

func (r *orderRepo) DeliveredRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("status = ?", domain.StatusDelivered).
		Select("SUM(total_amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
