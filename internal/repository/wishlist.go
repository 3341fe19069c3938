package repository

import (
	"context"

	"storefront/internal/model"

	"gorm.io/gorm"
)

type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]*model.WishlistLine, error)
	Create(ctx context.Context, line *model.WishlistLine) error
	Delete(ctx context.Context, userID string, productID uint) (int64, error)
}

type wishlistRepoImpl struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepoImpl{
		db: db,
	}
}

func (r *wishlistRepoImpl) List(ctx context.Context, userID string) ([]*model.WishlistLine, error) {
	var lines []*model.WishlistLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *wishlistRepoImpl) Create(ctx context.Context, line *model.WishlistLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *wishlistRepoImpl) Delete(ctx context.Context, userID string, productID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistLine{})

	return result.RowsAffected, result.Error
}
