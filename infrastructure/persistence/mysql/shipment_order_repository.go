package mysql

import (
	"context"
	"errors"

	"tms/domain/shared"
	"tms/domain/shipmentorder"
	"tms/infrastructure/persistence"
	"tms/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentOrderRepository GORM implementation of the shipment order
// persistence port
type ShipmentOrderRepository struct {
	db *gorm.DB
}

func NewShipmentOrderRepository(db *gorm.DB) *ShipmentOrderRepository {
	return &ShipmentOrderRepository{db: db}
}

func (r *ShipmentOrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *ShipmentOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipmentorder.ShipmentOrder, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var orderPO po.ShipmentOrderPO
	result := r.getDB(ctx).First(&orderPO, "id = ?", id.String())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shipmentorder.ErrShipmentOrderNotFound
		}
		return nil, result.Error
	}

	return orderPO.ToDomain()
}

func (r *ShipmentOrderRepository) Save(ctx context.Context, o *shipmentorder.ShipmentOrder) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, o)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, o)
	})
}

func (r *ShipmentOrderRepository) saveWithTx(tx *gorm.DB, o *shipmentorder.ShipmentOrder) error {
	orderPO := po.FromShipmentOrderDomain(o)

	if o.Version() == 1 {
		return tx.Create(orderPO).Error
	}

	result := tx.Model(&po.ShipmentOrderPO{}).
		Where("id = ? AND version < ?", orderPO.ID, orderPO.Version).
		Updates(map[string]interface{}{
			"archived":   orderPO.Archived,
			"version":    orderPO.Version,
			"updated_at": orderPO.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&po.ShipmentOrderPO{}).Where("id = ?", orderPO.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shipmentorder.ErrShipmentOrderNotFound
		}
		return shared.NewConflictError("shipment_order", "concurrent modification detected")
	}
	return nil
}

var _ shipmentorder.Repository = (*ShipmentOrderRepository)(nil)

// CompanyProjectionRepository GORM implementation of the local company
// projection inside the shipment order module
type CompanyProjectionRepository struct {
	db *gorm.DB
}

func NewCompanyProjectionRepository(db *gorm.DB) *CompanyProjectionRepository {
	return &CompanyProjectionRepository{db: db}
}

func (r *CompanyProjectionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *CompanyProjectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipmentorder.Company, error) {
	var projectionPO po.CompanyProjectionPO
	result := r.getDB(ctx).First(&projectionPO, "company_id = ?", id.String())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shipmentorder.ErrUnknownCompany
		}
		return nil, result.Error
	}

	return projectionPO.ToDomain()
}

// Upsert Insert or refresh the projection row. Last write wins; the
// projection is eventually consistent with the company module.
func (r *CompanyProjectionRepository) Upsert(ctx context.Context, c *shipmentorder.Company) error {
	projectionPO := po.FromCompanyProjection(c)
	return r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "active", "synced_at"}),
	}).Create(projectionPO).Error
}

var _ shipmentorder.CompanyProjectionRepository = (*CompanyProjectionRepository)(nil)
