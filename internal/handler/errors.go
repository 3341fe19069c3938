package handler

import (
	"errors"
	"net/http"

	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var errorCodes = map[error]struct {
	code   string
	status int
}{
	service.ErrEmptyOrder:           {"EMPTY_ORDER", http.StatusBadRequest},
	service.ErrInvalidQuantity:      {"INVALID_QUANTITY", http.StatusBadRequest},
	service.ErrProductNotFound:      {"PRODUCT_NOT_FOUND", http.StatusNotFound},
	service.ErrShipmentTypeNotFound: {"SHIPMENT_TYPE_NOT_FOUND", http.StatusNotFound},
	service.ErrOrderNotFound:        {"ORDER_NOT_FOUND", http.StatusNotFound},
	service.ErrDuplicateLine:        {"DUPLICATE_LINE", http.StatusConflict},
	service.ErrLineNotFound:         {"LINE_NOT_FOUND", http.StatusNotFound},
	service.ErrCouponNotFound:       {"COUPON_NOT_FOUND", http.StatusNotFound},
	service.ErrCouponExpired:        {"COUPON_EXPIRED", http.StatusUnprocessableEntity},
	service.ErrCouponExhausted:      {"COUPON_EXHAUSTED", http.StatusUnprocessableEntity},
	service.ErrCouponAlreadyApplied: {"COUPON_ALREADY_APPLIED", http.StatusConflict},
	service.ErrCouponNotApplied:     {"COUPON_NOT_APPLIED", http.StatusNotFound},
	service.ErrWishlistLineExists:   {"WISHLIST_LINE_EXISTS", http.StatusConflict},
	service.ErrWishlistLineNotFound: {"WISHLIST_LINE_NOT_FOUND", http.StatusNotFound},
}

// respondError translates the closed business-error set into status codes
// and stable machine-readable codes. Anything outside the set is an
// internal failure and leaks no detail to the client.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	for sentinel, mapping := range errorCodes {
		if errors.Is(err, sentinel) {
			return errorJSON(c, mapping.status, mapping.code, sentinel.Error())
		}
	}

	var outOfStock *service.OutOfStockError
	if errors.As(err, &outOfStock) {
		return errorJSON(c, http.StatusUnprocessableEntity, "OUT_OF_STOCK", outOfStock.Error())
	}
	var insufficient *service.InsufficientStockError
	if errors.As(err, &insufficient) {
		return errorJSON(c, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", insufficient.Error())
	}

	logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return errorJSON(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: code, Message: message},
	})
}
