package handler

import (
	"net/http"
	"time"

	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	order, err := h.orderService.CreateOrder(ctx, middleware.UserID(c), req.ShipmentTypeID, req.Lines, req.CouponIDs)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, orderResponse(order))
}

func (h *OrderHandler) CheckoutBasket(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutBasketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	order, err := h.orderService.CheckoutBasket(ctx, middleware.UserID(c), req.ShipmentTypeID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, orderResponse(order))
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListOrders(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, orderResponse(order))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, middleware.UserID(c), c.Param("number"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

func orderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		Number:         order.Number,
		IsPaid:         order.IsPaid,
		ShipmentTypeID: order.ShipmentTypeID,
		Total:          order.Total,
		Lines:          []dto.OrderLineResponse{},
		CouponIDs:      []uint{},
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			SalePrice: line.SalePrice,
		})
	}
	for _, coupon := range order.Coupons {
		resp.CouponIDs = append(resp.CouponIDs, coupon.CouponID)
	}
	return resp
}
