package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, shipmentTypeID uint, lines []dto.OrderLineRequest, couponIDs []uint) (*model.Order, error)
	CheckoutBasket(ctx context.Context, userID string, shipmentTypeID uint) (*model.Order, error)
	GetOrder(ctx context.Context, userID, number string) (*model.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*model.Order, error)
	MarkPaid(ctx context.Context, number string) error
}

type orderServiceImpl struct {
	db            *gorm.DB
	logger        *zap.Logger
	checkout      *metrics.CheckoutMetrics
	productRepo   repository.ProductRepository
	couponRepo    repository.CouponRepository
	orderRepo     repository.OrderRepository
	basketRepo    repository.BasketRepository
	shipmentRepo  repository.ShipmentRepository
	couponService CouponService
}

func NewOrderService(
	db *gorm.DB,
	logger *zap.Logger,
	checkout *metrics.CheckoutMetrics,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	orderRepo repository.OrderRepository,
	basketRepo repository.BasketRepository,
	shipmentRepo repository.ShipmentRepository,
	couponService CouponService,
) OrderService {
	return &orderServiceImpl{
		db:            db,
		logger:        logger,
		checkout:      checkout,
		productRepo:   productRepo,
		couponRepo:    couponRepo,
		orderRepo:     orderRepo,
		basketRepo:    basketRepo,
		shipmentRepo:  shipmentRepo,
		couponService: couponService,
	}
}

// CreateOrder turns a checkout request into an immutable order. Stock and
// coupon eligibility are pre-checked before any write, then re-checked
// inside the transaction under row locks; either everything commits or
// nothing does.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, shipmentTypeID uint, lines []dto.OrderLineRequest, couponIDs []uint) (*model.Order, error) {
	start := time.Now()
	order, err := s.createOrder(ctx, userID, shipmentTypeID, lines, couponIDs, nil)
	s.observe(start, err)
	return order, err
}

// CheckoutBasket creates an order from the user's current basket lines
// and applied coupons, and empties the basket in the same transaction.
func (s *orderServiceImpl) CheckoutBasket(ctx context.Context, userID string, shipmentTypeID uint) (*model.Order, error) {
	start := time.Now()

	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find basket: %w", err)
	}

	basketLines, err := s.basketRepo.GetLines(ctx, basket.ID)
	if err != nil {
		return nil, fmt.Errorf("get basket lines: %w", err)
	}
	lines := make([]dto.OrderLineRequest, len(basketLines))
	for i, line := range basketLines {
		lines[i] = dto.OrderLineRequest{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	applied, err := s.basketRepo.GetAppliedCoupons(ctx, basket.ID)
	if err != nil {
		return nil, fmt.Errorf("get applied coupons: %w", err)
	}
	couponIDs := make([]uint, len(applied))
	for i, a := range applied {
		couponIDs[i] = a.CouponID
	}

	order, err := s.createOrder(ctx, userID, shipmentTypeID, lines, couponIDs, basket)
	s.observe(start, err)
	return order, err
}

func (s *orderServiceImpl) createOrder(ctx context.Context, userID string, shipmentTypeID uint, lines []dto.OrderLineRequest, couponIDs []uint, clearBasket *model.Basket) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	// Lines naming the same product collapse into one line with the
	// summed quantity, so the stock check always sees the full demand.
	productIDs := make([]uint, 0, len(lines))
	quantities := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := quantities[line.ProductID]; !seen {
			productIDs = append(productIDs, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	couponIDs = dedupeIDs(couponIDs)

	if _, err := s.shipmentRepo.FindType(ctx, shipmentTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentTypeNotFound
		}
		return nil, fmt.Errorf("find shipment type: %w", err)
	}

	// Pre-check everything before writing anything. The transaction below
	// re-checks under locks; this pass rejects the obviously doomed
	// requests without taking locks at all.
	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	if err := verifyStock(products, productIDs, quantities); err != nil {
		return nil, err
	}

	for _, couponID := range couponIDs {
		if _, err := s.couponService.Validate(ctx, couponID); err != nil {
			return nil, err
		}
	}

	number := uuid.NewString()

	// built fresh on every attempt so a retried transaction never reuses
	// ids assigned by a rolled-back one
	var order *model.Order
	err = client.TransactionWithRetry(ctx, s.db, func(tx *gorm.DB) error {
		order = &model.Order{
			Number:         number,
			UserID:         userID,
			ShipmentTypeID: shipmentTypeID,
		}

		// Re-read prices and stock with the rows locked; this is the
		// authoritative snapshot for the order.
		locked, err := s.productRepo.LockForUpdate(ctx, tx, productIDs)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		if err := verifyStock(locked, productIDs, quantities); err != nil {
			return err
		}

		orderLines := make([]*model.OrderLine, len(productIDs))
		priceLines := make([]pricing.Line, len(productIDs))
		lockedMap := make(map[uint]*model.Product, len(locked))
		for _, p := range locked {
			lockedMap[p.ID] = p
		}
		for i, productID := range productIDs {
			product := lockedMap[productID]
			quantity := quantities[productID]
			orderLines[i] = &model.OrderLine{
				ProductID: product.ID,
				Quantity:  quantity,
				SalePrice: product.Price,
			}
			priceLines[i] = pricing.Line{UnitPrice: product.Price, Quantity: quantity}

			if err := s.productRepo.DecrementStock(ctx, tx, product.ID, quantity); err != nil {
				// the stock >= quantity guard rejected the update
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return stockError(product.ID, quantity, product.Stock)
				}
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		// Coupons re-validated under their row locks: expiry and usage
		// count may have changed since the pre-check.
		var discounts []pricing.Discount
		var orderCoupons []*model.OrderCoupon
		if len(couponIDs) > 0 {
			coupons, err := s.couponRepo.LockForUpdate(ctx, tx, couponIDs)
			if err != nil {
				return fmt.Errorf("lock coupons: %w", err)
			}
			if len(coupons) != len(couponIDs) {
				return ErrCouponNotFound
			}
			for _, coupon := range coupons {
				if err := s.couponService.Check(ctx, tx, coupon); err != nil {
					return err
				}
				discounts = append(discounts, pricing.Discount{Type: coupon.Type, Value: coupon.Value})
			}
		}

		totals, err := pricing.ComputeTotal(priceLines, discounts)
		if err != nil {
			return fmt.Errorf("compute order total: %w", err)
		}
		order.Total = totals.Total

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, ol := range orderLines {
			ol.OrderID = order.ID
		}
		if err := s.orderRepo.CreateLines(ctx, tx, orderLines); err != nil {
			return fmt.Errorf("create order lines: %w", err)
		}

		for _, couponID := range couponIDs {
			orderCoupons = append(orderCoupons, &model.OrderCoupon{OrderID: order.ID, CouponID: couponID})
		}
		if err := s.orderRepo.CreateCoupons(ctx, tx, orderCoupons); err != nil {
			return fmt.Errorf("create order coupons: %w", err)
		}

		shipment := &model.Shipment{
			OrderID:        order.ID,
			ShipmentTypeID: shipmentTypeID,
			Status:         "PENDING",
		}
		if err := s.shipmentRepo.CreateShipment(ctx, tx, shipment); err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}

		if clearBasket != nil {
			if err := s.basketRepo.ClearLines(ctx, tx, clearBasket.ID); err != nil {
				return fmt.Errorf("clear basket lines: %w", err)
			}
			if err := s.basketRepo.ClearCoupons(ctx, tx, clearBasket.ID); err != nil {
				return fmt.Errorf("clear basket coupons: %w", err)
			}
		}

		order.Lines = make([]model.OrderLine, len(orderLines))
		for i, ol := range orderLines {
			order.Lines[i] = *ol
		}
		order.Coupons = make([]model.OrderCoupon, len(orderCoupons))
		for i, oc := range orderCoupons {
			order.Coupons[i] = *oc
		}
		order.Shipment = shipment

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_number", order.Number),
		zap.String("user_id", userID),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(order.Lines)),
		zap.Int("coupons", len(couponIDs)),
	)

	return order, nil
}

// dedupeIDs drops repeated ids, keeping first-seen order. A coupon can
// be consumed at most once per order, so sending it twice is the same
// as sending it once.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// verifyStock checks requested quantity against available stock for every
// requested product, distinguishing missing products, empty stock, and
// partial stock.
func verifyStock(products []*model.Product, productIDs []uint, quantities map[uint]int) error {
	productMap := make(map[uint]*model.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	for _, id := range productIDs {
		product, ok := productMap[id]
		if !ok {
			return ErrProductNotFound
		}
		requested := quantities[id]
		if requested > product.Stock {
			return stockError(id, requested, product.Stock)
		}
	}

	return nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, number string) (*model.Order, error) {
	order, err := s.orderRepo.FindByNumber(ctx, userID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// MarkPaid flips the one mutable order field; lines, sale prices and
// total never change after creation.
func (s *orderServiceImpl) MarkPaid(ctx context.Context, number string) error {
	err := s.orderRepo.MarkPaid(ctx, number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *orderServiceImpl) observe(start time.Time, err error) {
	if s.checkout == nil {
		return
	}

	outcome := "created"
	if err != nil {
		outcome = "rejected"
		if !isBusinessError(err) {
			outcome = "failed"
		}
	}
	s.checkout.Orders.WithLabelValues(outcome).Inc()
	s.checkout.LatencyMS.Observe(float64(time.Since(start).Milliseconds()))
}

func isBusinessError(err error) bool {
	var outOfStock *OutOfStockError
	var insufficient *InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrShipmentTypeNotFound),
		errors.Is(err, ErrCouponNotFound),
		errors.Is(err, ErrCouponExpired),
		errors.Is(err, ErrCouponExhausted),
		errors.As(err, &outOfStock),
		errors.As(err, &insufficient):
		return true
	}
	return false
}
