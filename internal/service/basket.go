package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

// BasketDetails is the live basket view: current product prices joined
// onto the lines and run through the pricing calculator. Totals here are
// a preview, never a commitment; checkout snapshots its own prices.
type BasketDetails struct {
	BasketID uint
	Lines    []BasketLineDetail
	Coupons  []*model.Coupon
	Totals   pricing.Totals
}

type BasketLineDetail struct {
	Product  *model.Product
	Quantity int
}

type BasketService interface {
	GetOrCreate(ctx context.Context, userID string) (*model.Basket, error)
	GetDetailed(ctx context.Context, userID string) (*BasketDetails, error)
	AddLine(ctx context.Context, userID string, productID uint, quantity int) (*model.BasketLine, error)
	SetQuantity(ctx context.Context, userID string, productID uint, quantity int) error
	RemoveLine(ctx context.Context, userID string, productID uint) error
	ApplyCoupon(ctx context.Context, userID string, key string) ([]*model.Coupon, error)
	RemoveCoupon(ctx context.Context, userID string, couponID uint) ([]*model.Coupon, error)
}

type basketServiceImpl struct {
	basketRepo    repository.BasketRepository
	productRepo   repository.ProductRepository
	couponRepo    repository.CouponRepository
	couponService CouponService
}

func NewBasketService(
	basketRepo repository.BasketRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	couponService CouponService,
) BasketService {
	return &basketServiceImpl{
		basketRepo:    basketRepo,
		productRepo:   productRepo,
		couponRepo:    couponRepo,
		couponService: couponService,
	}
}

func (s *basketServiceImpl) GetOrCreate(ctx context.Context, userID string) (*model.Basket, error) {
	return s.basketRepo.FindOrCreateByUser(ctx, userID)
}

func (s *basketServiceImpl) AddLine(ctx context.Context, userID string, productID uint, quantity int) (*model.BasketLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find basket: %w", err)
	}

	if _, err := s.basketRepo.FindLine(ctx, basket.ID, productID); err == nil {
		return nil, ErrDuplicateLine
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find basket line: %w", err)
	}

	line := &model.BasketLine{
		BasketID:  basket.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.basketRepo.CreateLine(ctx, line); err != nil {
		// unique (basket_id, product_id) lost a race with another request
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateLine
		}
		return nil, fmt.Errorf("create basket line: %w", err)
	}

	return line, nil
}

// SetQuantity overwrites the line quantity, last write wins. Quantity 0
// deletes the line and is idempotent: deleting an absent line succeeds.
// Updating an absent line to a positive quantity is LineNotFound.
func (s *basketServiceImpl) SetQuantity(ctx context.Context, userID string, productID uint, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("find basket: %w", err)
	}

	if quantity == 0 {
		_, err := s.basketRepo.DeleteLine(ctx, basket.ID, productID)
		if err != nil {
			return fmt.Errorf("delete basket line: %w", err)
		}
		return nil
	}

	affected, err := s.basketRepo.UpdateLineQuantity(ctx, basket.ID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update basket line: %w", err)
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (s *basketServiceImpl) RemoveLine(ctx context.Context, userID string, productID uint) error {
	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("find basket: %w", err)
	}

	affected, err := s.basketRepo.DeleteLine(ctx, basket.ID, productID)
	if err != nil {
		return fmt.Errorf("delete basket line: %w", err)
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	return nil
}

// ApplyCoupon validates optimistically; checkout re-validates because a
// coupon can expire or exhaust between here and order creation.
func (s *basketServiceImpl) ApplyCoupon(ctx context.Context, userID string, key string) ([]*model.Coupon, error) {
	coupon, err := s.couponService.ValidateKey(ctx, key)
	if err != nil {
		return nil, err
	}

	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find basket: %w", err)
	}

	applied := &model.AppliedCoupon{
		BasketID: basket.ID,
		CouponID: coupon.ID,
	}
	if err := s.basketRepo.CreateAppliedCoupon(ctx, applied); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponAlreadyApplied
		}
		return nil, fmt.Errorf("apply coupon: %w", err)
	}

	return s.appliedCoupons(ctx, basket.ID)
}

func (s *basketServiceImpl) RemoveCoupon(ctx context.Context, userID string, couponID uint) ([]*model.Coupon, error) {
	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find basket: %w", err)
	}

	affected, err := s.basketRepo.DeleteAppliedCoupon(ctx, basket.ID, couponID)
	if err != nil {
		return nil, fmt.Errorf("remove coupon: %w", err)
	}
	if affected == 0 {
		return nil, ErrCouponNotApplied
	}

	return s.appliedCoupons(ctx, basket.ID)
}

func (s *basketServiceImpl) GetDetailed(ctx context.Context, userID string) (*BasketDetails, error) {
	basket, err := s.basketRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find basket: %w", err)
	}

	lines, err := s.basketRepo.GetLines(ctx, basket.ID)
	if err != nil {
		return nil, fmt.Errorf("get basket lines: %w", err)
	}

	coupons, err := s.appliedCoupons(ctx, basket.ID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, len(lines))
	for i, line := range lines {
		productIDs[i] = line.ProductID
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	productMap := make(map[uint]*model.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	details := &BasketDetails{BasketID: basket.ID}
	priceLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		product, ok := productMap[line.ProductID]
		if !ok {
			// product deleted from the catalog after it was basketed;
			// skip rather than fail the whole view
			continue
		}
		details.Lines = append(details.Lines, BasketLineDetail{
			Product:  product,
			Quantity: line.Quantity,
		})
		priceLines = append(priceLines, pricing.Line{
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}

	discounts := make([]pricing.Discount, len(coupons))
	for i, c := range coupons {
		discounts[i] = pricing.Discount{Type: c.Type, Value: c.Value}
	}

	totals, err := pricing.ComputeTotal(priceLines, discounts)
	if err != nil {
		return nil, fmt.Errorf("compute basket totals: %w", err)
	}
	details.Coupons = coupons
	details.Totals = totals

	return details, nil
}

func (s *basketServiceImpl) appliedCoupons(ctx context.Context, basketID uint) ([]*model.Coupon, error) {
	applied, err := s.basketRepo.GetAppliedCoupons(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("get applied coupons: %w", err)
	}
	if len(applied) == 0 {
		return nil, nil
	}

	couponIDs := make([]uint, len(applied))
	for i, a := range applied {
		couponIDs[i] = a.CouponID
	}

	coupons, err := s.couponRepo.FindMany(ctx, couponIDs)
	if err != nil {
		return nil, fmt.Errorf("get coupons: %w", err)
	}

	// keep application order
	couponMap := make(map[uint]*model.Coupon, len(coupons))
	for _, c := range coupons {
		couponMap[c.ID] = c
	}
	ordered := make([]*model.Coupon, 0, len(applied))
	for _, a := range applied {
		if c, ok := couponMap[a.CouponID]; ok {
			ordered = append(ordered, c)
		}
	}

	return ordered, nil
}
