package handler

import (
	"net/http"

	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

func (h *WishlistHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.wishlistService.List(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, products)
}

func (h *WishlistHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	if err := h.wishlistService.Add(ctx, middleware.UserID(c), req.ProductID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusCreated)
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	if err := h.wishlistService.Remove(ctx, middleware.UserID(c), productID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
