package repository

import (
	"context"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID uint64
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool
	ActiveOnly bool
}

// CatalogRepository owns categories, products and shipping zones.
// Stock on a product is only written through SetStock and the order
// workflow; UpdateProduct never touches it.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id uint64) error
	FindCategoryByID(ctx context.Context, id uint64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id uint64) error
	FindProductByID(ctx context.Context, id uint64) (*domain.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	ListLowStock(ctx context.Context) ([]domain.Product, error)
	SetStock(ctx context.Context, productID uint64, quantity int) (*domain.Product, error)

	CountActiveProducts(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)

	ListShippingZones(ctx context.Context) ([]domain.ShippingZone, error)
	FindShippingZoneByID(ctx context.Context, id uint64) (*domain.ShippingZone, error)
}
