package service

import (
	"errors"
	"fmt"
)

// Business-rule violations. The handler layer maps these to status codes
// and stable machine-readable error codes; none of them is retried.
var (
	ErrEmptyOrder           = errors.New("order must contain at least one line")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrProductNotFound      = errors.New("product not found")
	ErrShipmentTypeNotFound = errors.New("shipment type not found")
	ErrOrderNotFound        = errors.New("order not found")

	ErrDuplicateLine = errors.New("basket line already exists for this product")
	ErrLineNotFound  = errors.New("basket line not found")

	ErrCouponNotFound       = errors.New("coupon not found")
	ErrCouponExpired        = errors.New("coupon has expired")
	ErrCouponExhausted      = errors.New("coupon usage limit reached")
	ErrCouponAlreadyApplied = errors.New("coupon already applied to this basket")
	ErrCouponNotApplied     = errors.New("coupon is not applied to this basket")

	ErrWishlistLineExists   = errors.New("product already on wishlist")
	ErrWishlistLineNotFound = errors.New("product not on wishlist")
)

// OutOfStockError reports a product with zero available stock.
type OutOfStockError struct {
	ProductID uint
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %d is out of stock", e.ProductID)
}

// InsufficientStockError reports a product with some stock, but less than
// the requested quantity.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d has %d in stock, %d requested", e.ProductID, e.Available, e.Requested)
}

// stockError distinguishes an empty shelf from a short one.
func stockError(productID uint, requested, available int) error {
	if available <= 0 {
		return &OutOfStockError{ProductID: productID}
	}
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}
