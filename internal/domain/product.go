package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

type Category struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

type Product struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint64          `json:"userId" gorm:"not null;index"`
	CategoryID    *uint64         `json:"categoryId" gorm:"index"`
	Name          string          `json:"name" gorm:"size:200;not null;index"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `json:"stockQuantity" gorm:"not null;default:0"`
	SKU           string          `json:"sku" gorm:"size:50;uniqueIndex;not null"`
	ImageURL      string          `json:"imageUrl" gorm:"size:500"`
	IsActive      bool            `json:"isActive" gorm:"not null;default:true"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

func (p *Product) LowStock() bool {
	return p.StockQuantity > 0 && p.StockQuantity < LowStockThreshold
}

// ShippingZone carries per-zone rates; orders above the free-shipping
// threshold ship at no cost.
type ShippingZone struct {
	ID                    uint64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                  string           `json:"name" gorm:"size:100;not null"`
	Country               string           `json:"country" gorm:"size:100;not null"`
	BaseRate              decimal.Decimal  `json:"baseRate" gorm:"type:decimal(10,2);not null"`
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold" gorm:"type:decimal(10,2)"`
}

// ShippingCost applies the zone's free-shipping threshold to an order total.
func (z *ShippingZone) ShippingCost(orderTotal decimal.Decimal) decimal.Decimal {
	if z.FreeShippingThreshold != nil && orderTotal.GreaterThanOrEqual(*z.FreeShippingThreshold) {
		return decimal.Zero
	}
	return z.BaseRate
}

func (Category) TableName() string     { return "categories" }
func (Product) TableName() string      { return "products" }
func (ShippingZone) TableName() string { return "shipping_zones" }
