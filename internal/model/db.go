package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponAmount     CouponType = "AMOUNT"     // flat discount
	CouponPercentage CouponType = "PERCENTAGE" // percentage of subtotal
)

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Slug        string          `gorm:"size:255;uniqueIndex;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// informational strike-through discount shown in the catalog,
	// never part of the total
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock      int             `gorm:"not null;default:0"`
	CategoryID *uint           `gorm:"index"`

	Images []ProductImage
	Metas  []ProductMeta

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:255;not null"`
	Slug     string `gorm:"size:255;uniqueIndex;not null"`
	ParentID *uint  `gorm:"index"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"index;not null"`
	URL       string `gorm:"size:512;not null"`
	Position  int    `gorm:"not null;default:0"`
}

type ProductMeta struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"uniqueIndex:idx_product_meta_key;not null"`
	Key       string `gorm:"size:64;uniqueIndex:idx_product_meta_key;not null"`
	Value     string `gorm:"size:512"`
}

// Basket is the per-user mutable cart. One row per user; guests get a
// basket keyed by an opaque token.
type Basket struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     string `gorm:"size:64;uniqueIndex;not null"`
	GuestToken string `gorm:"size:64;uniqueIndex"`

	Lines   []BasketLine
	Coupons []AppliedCoupon

	CreatedAt time.Time
	UpdatedAt time.Time
}

type BasketLine struct {
	ID        uint `gorm:"primaryKey"`
	BasketID  uint `gorm:"uniqueIndex:idx_basket_product;not null"`
	ProductID uint `gorm:"uniqueIndex:idx_basket_product;index;not null"`
	Quantity  int  `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliedCoupon links a coupon to a basket; a coupon can be applied to a
// basket at most once.
type AppliedCoupon struct {
	ID       uint `gorm:"primaryKey"`
	BasketID uint `gorm:"uniqueIndex:idx_basket_coupon;not null"`
	CouponID uint `gorm:"uniqueIndex:idx_basket_coupon;index;not null"`

	CreatedAt time.Time
}

type Coupon struct {
	ID    uint            `gorm:"primaryKey"`
	Key   string          `gorm:"size:64;uniqueIndex;not null"`
	Type  CouponType      `gorm:"size:16;not null"`
	Value decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// nil means no expiry of that kind
	ExpiresTime  *time.Time
	ExpiresCount *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID             uint            `gorm:"primaryKey"`
	Number         string          `gorm:"size:64;uniqueIndex;not null"`
	UserID         string          `gorm:"size:64;index;not null"`
	IsPaid         bool            `gorm:"not null;default:false"`
	ShipmentTypeID uint            `gorm:"not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Lines    []OrderLine
	Coupons  []OrderCoupon
	Shipment *Shipment

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderLine struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Quantity  int  `gorm:"not null"`
	// product price at order-creation time, immutable thereafter
	SalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time
}

// OrderCoupon records historical coupon usage; rows are counted to
// enforce Coupon.ExpiresCount.
type OrderCoupon struct {
	ID       uint `gorm:"primaryKey"`
	OrderID  uint `gorm:"uniqueIndex:idx_order_coupon;not null"`
	CouponID uint `gorm:"uniqueIndex:idx_order_coupon;index;not null"`

	CreatedAt time.Time
}

type ShipmentType struct {
	ID    uint            `gorm:"primaryKey"`
	Name  string          `gorm:"size:128;not null"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

type Shipment struct {
	ID             uint   `gorm:"primaryKey"`
	OrderID        uint   `gorm:"uniqueIndex;not null"`
	ShipmentTypeID uint   `gorm:"not null"`
	Status         string `gorm:"size:32;index;not null;default:PENDING"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type WishlistLine struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;uniqueIndex:idx_wishlist_user_product;not null"`
	ProductID uint   `gorm:"uniqueIndex:idx_wishlist_user_product;index;not null"`

	CreatedAt time.Time
}
