package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateLines(ctx context.Context, tx *gorm.DB, lines []*model.OrderLine) error
	CreateCoupons(ctx context.Context, tx *gorm.DB, coupons []*model.OrderCoupon) error
	FindByNumber(ctx context.Context, userID, number string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	MarkPaid(ctx context.Context, number string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateLines(ctx context.Context, tx *gorm.DB, lines []*model.OrderLine) error {
	return tx.WithContext(ctx).Create(&lines).Error
}

func (r *orderRepoImpl) CreateCoupons(ctx context.Context, tx *gorm.DB, coupons []*model.OrderCoupon) error {
	if len(coupons) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&coupons).Error
}

func (r *orderRepoImpl) FindByNumber(ctx context.Context, userID, number string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Coupons").
		Preload("Shipment").
		Where("user_id = ? AND number = ?", userID, number).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, number string) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("number = ?", number).
		Updates(map[string]interface{}{
			"is_paid":    true,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
