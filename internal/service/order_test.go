package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/dto"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
)

func newOrderService(t *testing.T, db *gorm.DB) OrderService {
	t.Helper()

	couponRepo := repository.NewCouponRepository(db)
	return NewOrderService(
		db,
		zap.NewNop(),
		metrics.NewCheckoutMetrics(prometheus.NewRegistry()),
		repository.NewProductRepository(db),
		couponRepo,
		repository.NewOrderRepository(db),
		repository.NewBasketRepository(db),
		repository.NewShipmentRepository(db),
		NewCouponService(couponRepo),
	)
}

func TestCreateOrderEndToEnd(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)
	seedCoupon(t, db, &model.Coupon{ID: 1, Key: "SAVE10", Type: model.CouponPercentage, Value: decimal.NewFromInt(10)})

	order, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 2}}, []uint{1})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(180)), "total %s", order.Total)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].SalePrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.False(t, order.IsPaid)
	require.NotNil(t, order.Shipment)
	assert.Equal(t, "PENDING", order.Shipment.Status)

	assert.Equal(t, 3, productStock(t, db, 1))

	var usage int64
	require.NoError(t, db.Model(&model.OrderCoupon{}).Where("coupon_id = ?", 1).Count(&usage).Error)
	assert.EqualValues(t, 1, usage)
}

func TestCreateOrderEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrderInvalidQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 0}}, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCreateOrderUnknownShipmentType(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)

	_, err := svc.CreateOrder(context.Background(), "alice", 9,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)
	assert.ErrorIs(t, err, ErrShipmentTypeNotFound)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 0)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)

	var outOfStock *OutOfStockError
	require.ErrorAs(t, err, &outOfStock)
	assert.Equal(t, uint(1), outOfStock.ProductID)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 3)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 4}}, nil)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, uint(1), insufficient.ProductID)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 4, insufficient.Requested)

	// nothing was written
	assert.Equal(t, 3, productStock(t, db, 1))
	var orders int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

// Repeated lines for one product are judged against stock as a single
// summed demand: two lines of 2 against stock 3 must fail outright, and
// stock must stay untouched.
func TestCreateOrderRepeatedLinesExceedStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 3)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1, []dto.OrderLineRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 1, Quantity: 2},
	}, nil)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, uint(1), insufficient.ProductID)
	assert.Equal(t, 4, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Available)

	assert.Equal(t, 3, productStock(t, db, 1))
	var orders int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

// When stock covers the sum, repeated lines merge into one order line.
func TestCreateOrderMergesRepeatedLines(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)

	order, err := svc.CreateOrder(context.Background(), "alice", 1, []dto.OrderLineRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 1, Quantity: 2},
	}, nil)
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, 4, order.Lines[0].Quantity)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(400)), "total %s", order.Total)
	assert.Equal(t, 1, productStock(t, db, 1))
}

// A failing line aborts the whole order: the passing line's stock must
// not be decremented.
func TestCreateOrderNoPartialWrites(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 10)
	seedProduct(t, db, 2, "50.00", 1)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1, []dto.OrderLineRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
	}, nil)
	require.Error(t, err)

	assert.Equal(t, 10, productStock(t, db, 1))
	assert.Equal(t, 1, productStock(t, db, 2))
}

func TestCreateOrderExhaustedCoupon(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)
	seedCoupon(t, db, &model.Coupon{ID: 1, Key: "ONCE", Type: model.CouponAmount, Value: decimal.NewFromInt(5), ExpiresCount: intPtr(1)})

	// first order consumes the single permitted use
	_, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, []uint{1})
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), "bob", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, []uint{1})
	assert.ErrorIs(t, err, ErrCouponExhausted)
}

func TestCreateOrderExpiredCoupon(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)
	expired := time.Now().Add(-time.Minute)
	seedCoupon(t, db, &model.Coupon{ID: 1, Key: "OLD", Type: model.CouponAmount, Value: decimal.NewFromInt(5), ExpiresTime: &expired})

	_, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, []uint{1})
	assert.ErrorIs(t, err, ErrCouponExpired)
}

// Sending the same coupon id twice discounts once, not twice.
func TestCreateOrderRepeatedCouponCountsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)
	seedCoupon(t, db, &model.Coupon{ID: 1, Key: "TEN", Type: model.CouponAmount, Value: decimal.NewFromInt(10)})

	order, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, []uint{1, 1})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(90)), "total %s", order.Total)
	require.Len(t, order.Coupons, 1)

	var usage int64
	require.NoError(t, db.Model(&model.OrderCoupon{}).Where("coupon_id = ?", 1).Count(&usage).Error)
	assert.EqualValues(t, 1, usage)
}

func TestCreateOrderTotalClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)
	seedCoupon(t, db, &model.Coupon{ID: 1, Key: "FIFTY", Type: model.CouponAmount, Value: decimal.NewFromInt(50)})
	seedCoupon(t, db, &model.Coupon{ID: 2, Key: "SEVENTY", Type: model.CouponAmount, Value: decimal.NewFromInt(70)})

	order, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, []uint{1, 2})
	require.NoError(t, err)
	assert.True(t, order.Total.IsZero(), "total %s", order.Total)
}

// Orders snapshot sale prices at creation; later catalog price changes
// must not leak into the stored order.
func TestOrderPriceSnapshotImmutable(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)

	order, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", 1).Update("price", "999.00").Error)

	stored, err := svc.GetOrder(context.Background(), "alice", order.Number)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.True(t, stored.Lines[0].SalePrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(100)))
}

// Two checkouts race for the last unit: exactly one succeeds and stock
// lands at zero, never below.
func TestConcurrentCheckoutLastUnit(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 1)
	seedShipmentType(t, db, 1)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateOrder(context.Background(), "alice", 1,
				[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var outOfStock *OutOfStockError
		var insufficient *InsufficientStockError
		assert.True(t, errors.As(err, &outOfStock) || errors.As(err, &insufficient),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, productStock(t, db, 1))
}

func TestCheckoutBasketClearsBasket(t *testing.T) {
	db := newTestDB(t)
	basketSvc := newBasketService(t, db)
	orderSvc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)
	seedCoupon(t, db, &model.Coupon{ID: 1, Key: "SAVE10", Type: model.CouponPercentage, Value: decimal.NewFromInt(10)})

	_, err := basketSvc.AddLine(context.Background(), "alice", 1, 2)
	require.NoError(t, err)
	_, err = basketSvc.ApplyCoupon(context.Background(), "alice", "SAVE10")
	require.NoError(t, err)

	order, err := orderSvc.CheckoutBasket(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(180)))

	details, err := basketSvc.GetDetailed(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, details.Lines)
	assert.Empty(t, details.Coupons)
}

func TestCheckoutEmptyBasket(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedShipmentType(t, db, 1)

	_, err := svc.CheckoutBasket(context.Background(), "alice", 1)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestMarkPaid(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)

	order, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)
	require.NoError(t, err)
	assert.False(t, order.IsPaid)

	require.NoError(t, svc.MarkPaid(context.Background(), order.Number))

	stored, err := svc.GetOrder(context.Background(), "alice", order.Number)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)

	assert.ErrorIs(t, svc.MarkPaid(context.Background(), "missing"), ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db)
	seedProduct(t, db, 1, "100.00", 5)
	seedShipmentType(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)
	require.NoError(t, err)
	_, err = svc.CreateOrder(context.Background(), "alice", 1,
		[]dto.OrderLineRequest{{ProductID: 1, Quantity: 1}}, nil)
	require.NoError(t, err)

	orders, err := svc.ListOrders(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = svc.ListOrders(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
