package service

import (
	"context"
	"errors"

	"storefront/internal/model"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

// CatalogService is the read-only storefront view: products, categories
// and shipment options. All mutation is administrator tooling, out of
// scope here.
type CatalogService interface {
	ListProducts(ctx context.Context, categorySlug string) ([]*model.Product, error)
	GetProduct(ctx context.Context, slug string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	ListShipmentTypes(ctx context.Context) ([]*model.ShipmentType, error)
}

type catalogServiceImpl struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	shipmentRepo repository.ShipmentRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	shipmentRepo repository.ShipmentRepository,
) CatalogService {
	return &catalogServiceImpl{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		shipmentRepo: shipmentRepo,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, categorySlug string) ([]*model.Product, error) {
	return s.productRepo.List(ctx, categorySlug)
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return product, nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogServiceImpl) ListShipmentTypes(ctx context.Context) ([]*model.ShipmentType, error) {
	return s.shipmentRepo.ListTypes(ctx)
}
