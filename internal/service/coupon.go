package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type CouponService interface {
	Validate(ctx context.Context, couponID uint) (*model.Coupon, error)
	ValidateKey(ctx context.Context, key string) (*model.Coupon, error)
	// Check verifies eligibility of an already-loaded coupon. db may be an
	// open transaction so checkout can re-check under its row locks;
	// nil means the plain connection.
	Check(ctx context.Context, db *gorm.DB, coupon *model.Coupon) error
}

type couponServiceImpl struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(
	couponRepo repository.CouponRepository,
) CouponService {
	return &couponServiceImpl{
		couponRepo: couponRepo,
	}
}

func (s *couponServiceImpl) Validate(ctx context.Context, couponID uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if err := s.Check(ctx, nil, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *couponServiceImpl) ValidateKey(ctx context.Context, key string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if err := s.Check(ctx, nil, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *couponServiceImpl) Check(ctx context.Context, db *gorm.DB, coupon *model.Coupon) error {
	if coupon.ExpiresTime != nil && coupon.ExpiresTime.Before(time.Now()) {
		return ErrCouponExpired
	}

	if coupon.ExpiresCount != nil {
		used, err := s.couponRepo.CountUsage(ctx, db, coupon.ID)
		if err != nil {
			return err
		}
		if used >= int64(*coupon.ExpiresCount) {
			return ErrCouponExhausted
		}
	}

	return nil
}
