package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type WishlistService interface {
	List(ctx context.Context, userID string) ([]*model.Product, error)
	Add(ctx context.Context, userID string, productID uint) error
	Remove(ctx context.Context, userID string, productID uint) error
}

type wishlistServiceImpl struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
) WishlistService {
	return &wishlistServiceImpl{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistServiceImpl) List(ctx context.Context, userID string) ([]*model.Product, error) {
	lines, err := s.wishlistRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	productIDs := make([]uint, len(lines))
	for i, line := range lines {
		productIDs[i] = line.ProductID
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	return products, nil
}

func (s *wishlistServiceImpl) Add(ctx context.Context, userID string, productID uint) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("find product: %w", err)
	}

	err := s.wishlistRepo.Create(ctx, &model.WishlistLine{
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrWishlistLineExists
		}
		return fmt.Errorf("add wishlist line: %w", err)
	}

	return nil
}

func (s *wishlistServiceImpl) Remove(ctx context.Context, userID string, productID uint) error {
	affected, err := s.wishlistRepo.Delete(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist line: %w", err)
	}
	if affected == 0 {
		return ErrWishlistLineNotFound
	}

	return nil
}
