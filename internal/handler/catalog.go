package handler

import (
	"net/http"

	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalogService.ListProducts(ctx, c.QueryParam("category"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalogService.GetProduct(ctx, c.Param("slug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.catalogService.ListCategories(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) ListShipmentTypes(c echo.Context) error {
	ctx := c.Request().Context()

	types, err := h.catalogService.ListShipmentTypes(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, types)
}
