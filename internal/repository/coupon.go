package repository

import (
	"context"

	"storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CouponRepository interface {
	FindByID(ctx context.Context, couponID uint) (*model.Coupon, error)
	FindByKey(ctx context.Context, key string) (*model.Coupon, error)
	FindMany(ctx context.Context, couponIDs []uint) ([]*model.Coupon, error)
	LockForUpdate(ctx context.Context, tx *gorm.DB, couponIDs []uint) ([]*model.Coupon, error)
	CountUsage(ctx context.Context, db *gorm.DB, couponID uint) (int64, error)
}

type couponRepoImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepoImpl{
		db: db,
	}
}

func (r *couponRepoImpl) FindByID(ctx context.Context, couponID uint) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).
		Where("id = ?", couponID).
		First(&coupon).Error

	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepoImpl) FindByKey(ctx context.Context, key string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&coupon).Error

	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepoImpl) FindMany(ctx context.Context, couponIDs []uint) ([]*model.Coupon, error) {
	var coupons []*model.Coupon
	err := r.db.WithContext(ctx).
		Where("id IN ?", couponIDs).
		Find(&coupons).
		Error

	if err != nil {
		return nil, err
	}

	return coupons, nil
}

// LockForUpdate reads the coupons inside tx with row locks held until
// commit, so two checkouts cannot both pass an expires_count boundary.
func (r *couponRepoImpl) LockForUpdate(ctx context.Context, tx *gorm.DB, couponIDs []uint) ([]*model.Coupon, error) {
	q := tx.WithContext(ctx)
	// sqlite has no FOR UPDATE and serializes writers on its own
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var coupons []*model.Coupon
	err := q.
		Where("id IN ?", couponIDs).
		Find(&coupons).
		Error

	if err != nil {
		return nil, err
	}

	return coupons, nil
}

// CountUsage counts committed orders that consumed the coupon. db may be
// the plain connection (basket-apply check) or an open transaction
// (checkout re-check).
func (r *couponRepoImpl) CountUsage(ctx context.Context, db *gorm.DB, couponID uint) (int64, error) {
	if db == nil {
		db = r.db
	}

	var count int64
	err := db.WithContext(ctx).Model(&model.OrderCoupon{}).
		Where("coupon_id = ?", couponID).
		Count(&count).Error

	return count, err
}
