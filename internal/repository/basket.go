package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BasketRepository interface {
	FindOrCreateByUser(ctx context.Context, userID string) (*model.Basket, error)
	FindLine(ctx context.Context, basketID, productID uint) (*model.BasketLine, error)
	GetLines(ctx context.Context, basketID uint) ([]*model.BasketLine, error)
	CreateLine(ctx context.Context, line *model.BasketLine) error
	UpdateLineQuantity(ctx context.Context, basketID, productID uint, quantity int) (int64, error)
	DeleteLine(ctx context.Context, basketID, productID uint) (int64, error)
	GetAppliedCoupons(ctx context.Context, basketID uint) ([]*model.AppliedCoupon, error)
	CreateAppliedCoupon(ctx context.Context, applied *model.AppliedCoupon) error
	DeleteAppliedCoupon(ctx context.Context, basketID, couponID uint) (int64, error)
	ClearCoupons(ctx context.Context, tx *gorm.DB, basketID uint) error
	ClearLines(ctx context.Context, tx *gorm.DB, basketID uint) error
}

type basketRepoImpl struct {
	db *gorm.DB
}

func NewBasketRepository(db *gorm.DB) BasketRepository {
	return &basketRepoImpl{
		db: db,
	}
}

// FindOrCreateByUser returns the user's basket, creating it on first
// touch. The unique user_id index makes concurrent first touches collapse
// to one row.
func (r *basketRepoImpl) FindOrCreateByUser(ctx context.Context, userID string) (*model.Basket, error) {
	var basket model.Basket
	err := r.db.WithContext(ctx).
		Where(model.Basket{UserID: userID}).
		Attrs(model.Basket{GuestToken: uuid.NewString()}).
		FirstOrCreate(&basket).Error

	if err != nil {
		return nil, err
	}

	return &basket, nil
}

func (r *basketRepoImpl) FindLine(ctx context.Context, basketID, productID uint) (*model.BasketLine, error) {
	var line model.BasketLine
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND product_id = ?", basketID, productID).
		First(&line).Error

	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *basketRepoImpl) GetLines(ctx context.Context, basketID uint) ([]*model.BasketLine, error) {
	var lines []*model.BasketLine
	err := r.db.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Order("id").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *basketRepoImpl) CreateLine(ctx context.Context, line *model.BasketLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *basketRepoImpl) UpdateLineQuantity(ctx context.Context, basketID, productID uint, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.BasketLine{}).
		Where("basket_id = ? AND product_id = ?", basketID, productID).
		Update("quantity", quantity)

	return result.RowsAffected, result.Error
}

func (r *basketRepoImpl) DeleteLine(ctx context.Context, basketID, productID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("basket_id = ? AND product_id = ?", basketID, productID).
		Delete(&model.BasketLine{})

	return result.RowsAffected, result.Error
}

func (r *basketRepoImpl) GetAppliedCoupons(ctx context.Context, basketID uint) ([]*model.AppliedCoupon, error) {
	var applied []*model.AppliedCoupon
	err := r.db.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Order("id").
		Find(&applied).Error

	if err != nil {
		return nil, err
	}

	return applied, nil
}

func (r *basketRepoImpl) CreateAppliedCoupon(ctx context.Context, applied *model.AppliedCoupon) error {
	return r.db.WithContext(ctx).Create(applied).Error
}

func (r *basketRepoImpl) DeleteAppliedCoupon(ctx context.Context, basketID, couponID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("basket_id = ? AND coupon_id = ?", basketID, couponID).
		Delete(&model.AppliedCoupon{})

	return result.RowsAffected, result.Error
}

func (r *basketRepoImpl) ClearCoupons(ctx context.Context, tx *gorm.DB, basketID uint) error {
	return tx.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Delete(&model.AppliedCoupon{}).
		Error
}

func (r *basketRepoImpl) ClearLines(ctx context.Context, tx *gorm.DB, basketID uint) error {
	return tx.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Delete(&model.BasketLine{}).
		Error
}
