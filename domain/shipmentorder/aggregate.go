package shipmentorder

import (
	"time"

	"tms/domain/shared"

	"github.com/google/uuid"
)

// Module Schema/namespace this aggregate belongs to
const Module = "shipment_order"

// ShipmentOrder Aggregate root for the shipment order module
type ShipmentOrder struct {
	shared.EventRecorder

	id         uuid.UUID
	companyID  uuid.UUID
	externalID string
	archived   bool
	version    int
	createdAt  time.Time
	updatedAt  time.Time
}

// NewShipmentOrder Create a shipment order for a company and record
// ShipmentOrderCreated. The company must exist in this module's local
// projection; that check belongs to the use case.
func NewShipmentOrder(companyID uuid.UUID, externalID string) (*ShipmentOrder, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("shipment_order", "company_id", "company is required")
	}
	if externalID == "" {
		return nil, shared.NewValidationError("shipment_order", "external_id", "external id is required")
	}

	now := time.Now().UTC()
	o := &ShipmentOrder{
		id:         shared.NewID(),
		companyID:  companyID,
		externalID: externalID,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}
	o.Record(NewShipmentOrderCreated(o.id, companyID, externalID))
	return o, nil
}

// Restore Rebuild a shipment order from persistence without recording events
func Restore(id, companyID uuid.UUID, externalID string, archived bool, version int, createdAt, updatedAt time.Time) *ShipmentOrder {
	return &ShipmentOrder{
		id:         id,
		companyID:  companyID,
		externalID: externalID,
		archived:   archived,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Archive Soft-delete the order
func (o *ShipmentOrder) Archive() {
	if o.archived {
		return
	}
	o.archived = true
	o.updatedAt = time.Now().UTC()
	o.version++
}

// ID Aggregate identity
func (o *ShipmentOrder) ID() string { return o.id.String() }

// ShipmentOrderID Typed identity
func (o *ShipmentOrder) ShipmentOrderID() uuid.UUID { return o.id }

// CompanyID Owning company
func (o *ShipmentOrder) CompanyID() uuid.UUID { return o.companyID }

// ExternalID Customer-facing order reference
func (o *ShipmentOrder) ExternalID() string { return o.externalID }

// Archived Whether the order is soft-deleted
func (o *ShipmentOrder) Archived() bool { return o.archived }

// Version Optimistic concurrency version
func (o *ShipmentOrder) Version() int { return o.version }

// CreatedAt Creation timestamp
func (o *ShipmentOrder) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt Last mutation timestamp
func (o *ShipmentOrder) UpdatedAt() time.Time { return o.updatedAt }

var _ shared.AggregateRoot = (*ShipmentOrder)(nil)
