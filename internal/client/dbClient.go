package client

import (
	"log"
	"time"

	"storefront/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the primary MySQL database, or a local sqlite file when no
// DSN is configured (development).
func InitDB(databaseURL, sqlitePath string) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)
	if databaseURL != "" {
		db, err = gorm.Open(mysql.Open(databaseURL), &gorm.Config{TranslateError: true})
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{TranslateError: true})
	}
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (checkout holds row locks, keep it bounded)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		log.Fatal(err)
	}

	return db
}

// Migrate creates/updates the schema for all entities. Shared with the
// test databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.ProductImage{},
		&model.ProductMeta{},
		&model.Basket{},
		&model.BasketLine{},
		&model.AppliedCoupon{},
		&model.Coupon{},
		&model.Order{},
		&model.OrderLine{},
		&model.OrderCoupon{},
		&model.ShipmentType{},
		&model.Shipment{},
		&model.WishlistLine{},
	)
}
