package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BasketHandler struct {
	basketService service.BasketService
	logger        *zap.Logger
}

func NewBasketHandler(basketService service.BasketService, logger *zap.Logger) *BasketHandler {
	return &BasketHandler{
		basketService: basketService,
		logger:        logger,
	}
}

func (h *BasketHandler) GetBasket(c echo.Context) error {
	ctx := c.Request().Context()

	details, err := h.basketService.GetDetailed(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, basketResponse(details))
}

func (h *BasketHandler) AddLine(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	line, err := h.basketService.AddLine(ctx, middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})
}

func (h *BasketHandler) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	var req dto.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	if err := h.basketService.SetQuantity(ctx, middleware.UserID(c), productID, req.Quantity); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"quantity":   req.Quantity,
	})
}

func (h *BasketHandler) RemoveLine(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	if err := h.basketService.RemoveLine(ctx, middleware.UserID(c), productID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *BasketHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	coupons, err := h.basketService.ApplyCoupon(ctx, middleware.UserID(c), req.Key)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, couponResponses(coupons))
}

func (h *BasketHandler) RemoveCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	couponID, err := pathID(c, "couponID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	coupons, err := h.basketService.RemoveCoupon(ctx, middleware.UserID(c), couponID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, couponResponses(coupons))
}

func basketResponse(details *service.BasketDetails) dto.BasketResponse {
	resp := dto.BasketResponse{
		Lines:    []dto.BasketLineResponse{},
		Coupons:  couponResponses(details.Coupons),
		Subtotal: details.Totals.Subtotal,
		Total:    details.Totals.Total,
	}
	for _, line := range details.Lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		resp.Lines = append(resp.Lines, dto.BasketLineResponse{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Slug:      line.Product.Slug,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
			LineTotal: line.Product.Price.Mul(qty),
			Stock:     line.Product.Stock,
		})
	}
	return resp
}

func couponResponses(coupons []*model.Coupon) []dto.CouponResponse {
	resp := make([]dto.CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		resp = append(resp, dto.CouponResponse{
			ID:    c.ID,
			Key:   c.Key,
			Type:  string(c.Type),
			Value: c.Value,
		})
	}
	return resp
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
