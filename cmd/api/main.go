package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	db := client.InitDB(cfg.Database.URL, cfg.Database.SQLitePath)
	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	basketRepo := repository.NewBasketRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)

	ctx := context.Background()
	if cfg.Environment.Name == "development" {
		if err := productRepo.Seed(ctx); err != nil {
			logger.Warn("seed products", zap.Error(err))
		}
		if err := shipmentRepo.SeedTypes(ctx); err != nil {
			logger.Warn("seed shipment types", zap.Error(err))
		}
	}

	couponService := service.NewCouponService(couponRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, shipmentRepo)
	basketService := service.NewBasketService(basketRepo, productRepo, couponRepo, couponService)
	orderService := service.NewOrderService(
		db, logger, checkoutMetrics,
		productRepo, couponRepo, orderRepo, basketRepo, shipmentRepo,
		couponService,
	)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(catalogService, basketService, orderService, wishlistService, logger, cfg.Auth.JWTSecret)

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
