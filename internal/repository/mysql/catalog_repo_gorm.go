package mysql

import (
	"context"
	"errors"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"
	"gorm.io/gorm"
)

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if isUniqueViolation(err) {
		return domain.Validationf("category name %q is already taken", c.Name)
	}
	return err
}

func (r *catalogRepo) UpdateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Save(c).Error
	if isUniqueViolation(err) {
		return domain.Validationf("category name %q is already taken", c.Name)
	}
	return err
}

func (r *catalogRepo) DeleteCategory(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *catalogRepo) FindCategoryByID(ctx context.Context, id uint64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isUniqueViolation(err) {
		return domain.Validationf("sku %q is already taken", p.SKU)
	}
	return err
}

// UpdateProduct writes everything except stock; stock moves only through
// SetStock and the order workflow.
func (r *catalogRepo) UpdateProduct(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Model(p).
		Select("CategoryID", "Name", "Description", "Price", "SKU", "ImageURL", "IsActive").
		Updates(p).Error
	if isUniqueViolation(err) {
		return domain.Validationf("sku %q is already taken", p.SKU)
	}
	return err
}

func (r *catalogRepo) DeleteProduct(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *catalogRepo) FindProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepo) ListProducts(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ? OR sku LIKE ?", like, like, like)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("stock_quantity > 0")
	}
	var out []domain.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity > 0 AND stock_quantity < ? AND is_active = ?", domain.LowStockThreshold, true).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) SetStock(ctx context.Context, productID uint64, quantity int) (*domain.Product, error) {
	var out domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := lockForUpdate(tx).First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}
		if err := tx.Model(&p).Update("stock_quantity", quantity).Error; err != nil {
			return err
		}
		p.StockQuantity = quantity
		out = p
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

func (r *catalogRepo) CountActiveProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *catalogRepo) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("stock_quantity > 0 AND stock_quantity < ? AND is_active = ?", domain.LowStockThreshold, true).
		Count(&n).Error
	return n, err
}

func (r *catalogRepo) CountOutOfStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("stock_quantity = 0 AND is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *catalogRepo) ListShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	var out []domain.ShippingZone
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) FindShippingZoneByID(ctx context.Context, id uint64) (*domain.ShippingZone, error) {
	var z domain.ShippingZone
	if err := r.db.WithContext(ctx).First(&z, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &z, nil
}
