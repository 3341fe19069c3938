package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/client"
	"storefront/internal/model"
)

// newTestDB opens a private in-memory sqlite database with the full
// schema. A single connection keeps sqlite's writer model predictable
// under the concurrent checkout tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id uint, price string, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		ID:    id,
		Name:  fmt.Sprintf("Product %d", id),
		Slug:  fmt.Sprintf("product-%d", id),
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon *model.Coupon) *model.Coupon {
	t.Helper()

	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func seedShipmentType(t *testing.T, db *gorm.DB, id uint) *model.ShipmentType {
	t.Helper()

	shipmentType := &model.ShipmentType{
		ID:    id,
		Name:  fmt.Sprintf("Shipping %d", id),
		Price: decimal.Zero,
	}
	require.NoError(t, db.Create(shipmentType).Error)
	return shipmentType
}

func productStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var product model.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Stock
}
