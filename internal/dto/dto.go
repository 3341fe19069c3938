package dto

import "github.com/shopspring/decimal"

type AddLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Key string `json:"key"`
}

type OrderLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	ShipmentTypeID uint               `json:"shipment_type_id"`
	Lines          []OrderLineRequest `json:"lines"`
	CouponIDs      []uint             `json:"coupon_ids"`
}

type CheckoutBasketRequest struct {
	ShipmentTypeID uint `json:"shipment_type_id"`
}

type AddWishlistRequest struct {
	ProductID uint `json:"product_id"`
}

type BasketLineResponse struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
}

type CouponResponse struct {
	ID    uint            `json:"id"`
	Key   string          `json:"key"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type BasketResponse struct {
	Lines    []BasketLineResponse `json:"lines"`
	Coupons  []CouponResponse     `json:"coupons"`
	Subtotal decimal.Decimal      `json:"subtotal"`
	Total    decimal.Decimal      `json:"total"`
}

type OrderLineResponse struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

type OrderResponse struct {
	Number         string              `json:"number"`
	IsPaid         bool                `json:"is_paid"`
	ShipmentTypeID uint                `json:"shipment_type_id"`
	Total          decimal.Decimal     `json:"total"`
	Lines          []OrderLineResponse `json:"lines"`
	CouponIDs      []uint              `json:"coupon_ids"`
	CreatedAt      string              `json:"created_at"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
