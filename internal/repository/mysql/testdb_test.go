package mysql

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	infra "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/mysql"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// newTestDB opens a private in-memory database per test. A single connection
// keeps the memory database alive and serializes concurrent transactions the
// way row locks do on MySQL.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku, price string, stock int, active bool) *domain.Product {
	t.Helper()
	p := &domain.Product{
		UserID:        1,
		Name:          name,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      active,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func currentStock(t *testing.T, db *gorm.DB, productID uint64) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.StockQuantity
}
