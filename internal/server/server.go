package server

import (
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo            *echo.Echo
	catalogHandler  *handler.CatalogHandler
	basketHandler   *handler.BasketHandler
	orderHandler    *handler.OrderHandler
	wishlistHandler *handler.WishlistHandler
	jwtSecret       string
}

func NewServer(
	catalogService service.CatalogService,
	basketService service.BasketService,
	orderService service.OrderService,
	wishlistService service.WishlistService,
	logger *zap.Logger,
	jwtSecret string,
) *Server {
	e := echo.New()

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		catalogHandler:  handler.NewCatalogHandler(catalogService, logger),
		basketHandler:   handler.NewBasketHandler(basketService, logger),
		orderHandler:    handler.NewOrderHandler(orderService, logger),
		wishlistHandler: handler.NewWishlistHandler(wishlistService, logger),
		jwtSecret:       jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- catalog (no session required) --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:slug", s.catalogHandler.GetProduct)
	api.GET("/categories", s.catalogHandler.ListCategories)
	api.GET("/shipment-types", s.catalogHandler.ListShipmentTypes)

	// -------- session-scoped --------
	session := api.Group("", middleware.Auth(s.jwtSecret))

	basket := session.Group("/basket")
	basket.GET("", s.basketHandler.GetBasket)
	basket.POST("/lines", s.basketHandler.AddLine)
	basket.PUT("/lines/:productID", s.basketHandler.SetQuantity)
	basket.DELETE("/lines/:productID", s.basketHandler.RemoveLine)
	basket.POST("/coupons", s.basketHandler.ApplyCoupon)
	basket.DELETE("/coupons/:couponID", s.basketHandler.RemoveCoupon)
	basket.POST("/checkout", s.orderHandler.CheckoutBasket)

	wishlist := session.Group("/wishlist")
	wishlist.GET("", s.wishlistHandler.List)
	wishlist.POST("", s.wishlistHandler.Add)
	wishlist.DELETE("/:productID", s.wishlistHandler.Remove)

	orders := session.Group("/orders")
	orders.POST("", s.orderHandler.CreateOrder)
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/:number", s.orderHandler.GetOrder)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
