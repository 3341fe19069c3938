// Package pricing computes basket and order totals. It is pure: no
// database access, deterministic output for identical input, shared by
// the basket preview and the checkout path so both always agree.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Line is a priced line item. UnitPrice is whatever the caller treats as
// authoritative: the live product price for baskets, the snapshotted sale
// price for orders.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Discount is the pricing-relevant slice of a coupon.
type Discount struct {
	Type  model.CouponType
	Value decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// InvalidCouponTypeError indicates a coupon row with a type outside the
// closed AMOUNT/PERCENTAGE set. Data corruption, not user error.
type InvalidCouponTypeError struct {
	Type model.CouponType
}

func (e *InvalidCouponTypeError) Error() string {
	return fmt.Sprintf("invalid coupon type %q", e.Type)
}

// ComputeTotal sums the lines into a subtotal, then applies each discount
// in input order. AMOUNT coupons subtract their value; PERCENTAGE coupons
// subtract value% of the original subtotal, never of the running total,
// so multiple percentage coupons do not compound and coupon order does
// not change the result. The total is clamped at zero.
func ComputeTotal(lines []Line, coupons []Discount) (Totals, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(line.UnitPrice.Mul(qty))
	}

	total := subtotal
	for _, c := range coupons {
		switch c.Type {
		case model.CouponAmount:
			total = total.Sub(c.Value)
		case model.CouponPercentage:
			total = total.Sub(subtotal.Mul(c.Value).Div(hundred))
		default:
			return Totals{}, &InvalidCouponTypeError{Type: c.Type}
		}
	}

	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{Subtotal: subtotal, Total: total.Round(2)}, nil
}
