package po

import (
	"time"

	"tms/domain/shipmentorder"

	"github.com/google/uuid"
)

// ShipmentOrderPO Persistence object for the shipment order aggregate
type ShipmentOrderPO struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	CompanyID  string    `gorm:"type:varchar(36);index;not null"`
	ExternalID string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Archived   bool      `gorm:"not null;default:false"`
	Version    int       `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (ShipmentOrderPO) TableName() string {
	return "shipment_orders"
}

// FromShipmentOrderDomain Map the aggregate to its persistence object
func FromShipmentOrderDomain(o *shipmentorder.ShipmentOrder) *ShipmentOrderPO {
	return &ShipmentOrderPO{
		ID:         o.ID(),
		CompanyID:  o.CompanyID().String(),
		ExternalID: o.ExternalID(),
		Archived:   o.Archived(),
		Version:    o.Version(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}

// ToDomain Rebuild the aggregate from the persistence object
func (p *ShipmentOrderPO) ToDomain() (*shipmentorder.ShipmentOrder, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, err
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return nil, err
	}
	return shipmentorder.Restore(id, companyID, p.ExternalID, p.Archived, p.Version, p.CreatedAt, p.UpdatedAt), nil
}

// CompanyProjectionPO Local read model of companies inside the shipment
// order module, refreshed from company integration events
type CompanyProjectionPO struct {
	CompanyID string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Active    bool      `gorm:"not null;default:true"`
	SyncedAt  time.Time `gorm:"not null"`
}

func (CompanyProjectionPO) TableName() string {
	return "shipment_order_companies"
}

// FromCompanyProjection Map the projection to its persistence object
func FromCompanyProjection(c *shipmentorder.Company) *CompanyProjectionPO {
	return &CompanyProjectionPO{
		CompanyID: c.CompanyID.String(),
		Name:      c.Name,
		Active:    c.Active,
		SyncedAt:  c.SyncedAt,
	}
}

// ToDomain Rebuild the projection from the persistence object
func (p *CompanyProjectionPO) ToDomain() (*shipmentorder.Company, error) {
	id, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return nil, err
	}
	return &shipmentorder.Company{
		CompanyID: id,
		Name:      p.Name,
		Active:    p.Active,
		SyncedAt:  p.SyncedAt,
	}, nil
}
