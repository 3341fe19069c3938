package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShipmentRepository interface {
	SeedTypes(ctx context.Context) error
	ListTypes(ctx context.Context) ([]*model.ShipmentType, error)
	FindType(ctx context.Context, shipmentTypeID uint) (*model.ShipmentType, error)
	CreateShipment(ctx context.Context, tx *gorm.DB, shipment *model.Shipment) error
}

type shipmentRepoImpl struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepoImpl{
		db: db,
	}
}

func (r *shipmentRepoImpl) SeedTypes(ctx context.Context) error {
	types := []model.ShipmentType{
		{ID: 1, Name: "Standard", Price: decimal.NewFromInt(5)},
		{ID: 2, Name: "Express", Price: decimal.NewFromInt(15)},
		{ID: 3, Name: "Pickup", Price: decimal.Zero},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error
}

func (r *shipmentRepoImpl) ListTypes(ctx context.Context) ([]*model.ShipmentType, error) {
	var types []*model.ShipmentType
	err := r.db.WithContext(ctx).Order("id").Find(&types).Error
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (r *shipmentRepoImpl) FindType(ctx context.Context, shipmentTypeID uint) (*model.ShipmentType, error) {
	var shipmentType model.ShipmentType
	err := r.db.WithContext(ctx).
		Where("id = ?", shipmentTypeID).
		First(&shipmentType).Error

	if err != nil {
		return nil, err
	}

	return &shipmentType, nil
}

func (r *shipmentRepoImpl) CreateShipment(ctx context.Context, tx *gorm.DB, shipment *model.Shipment) error {
	return tx.WithContext(ctx).Create(shipment).Error
}
