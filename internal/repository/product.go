package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindMany(ctx context.Context, productIDs []uint) ([]*model.Product, error)
	List(ctx context.Context, categorySlug string) ([]*model.Product, error)
	LockForUpdate(ctx context.Context, tx *gorm.DB, productIDs []uint) ([]*model.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: 1, Name: "Espresso Beans 1kg", Slug: "espresso-beans-1kg", Price: decimal.NewFromInt(24), Stock: 120},
		{ID: 2, Name: "Pour-Over Kettle", Slug: "pour-over-kettle", Price: decimal.NewFromInt(58), Stock: 35},
		{ID: 3, Name: "Ceramic Mug", Slug: "ceramic-mug", Price: decimal.NewFromInt(14), Stock: 200},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Metas").
		Where("slug = ?", slug).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, productIDs []uint) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) List(ctx context.Context, categorySlug string) ([]*model.Product, error) {
	q := r.db.WithContext(ctx).Preload("Images")
	if categorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var products []*model.Product
	err := q.Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

// LockForUpdate reads the products inside tx with row locks held until
// commit; checkout relies on this to serialize stock decrements.
func (r *productRepoImpl) LockForUpdate(ctx context.Context, tx *gorm.DB, productIDs []uint) ([]*model.Product, error) {
	q := tx.WithContext(ctx)
	// sqlite has no FOR UPDATE and serializes writers on its own
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var products []*model.Product
	err := q.
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// DecrementStock takes quantity units off the shelf. The stock >= ?
// guard means the update can never drive stock negative; a guarded-out
// update reports ErrRecordNotFound.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
