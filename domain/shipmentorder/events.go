package shipmentorder

import (
	"tms/domain/shared"

	"github.com/google/uuid"
)

// EventShipmentOrderCreated Event type discriminator
const EventShipmentOrderCreated = "ShipmentOrderCreated"

// ShipmentOrderCreated A shipment order entered the system
type ShipmentOrderCreated struct {
	shared.BaseEvent
	ShipmentOrderID uuid.UUID `json:"shipment_order_id"`
	CompanyID       uuid.UUID `json:"company_id"`
	ExternalID      string    `json:"external_id"`
}

// NewShipmentOrderCreated Record the creation of a shipment order
func NewShipmentOrderCreated(shipmentOrderID, companyID uuid.UUID, externalID string) *ShipmentOrderCreated {
	return &ShipmentOrderCreated{
		BaseEvent:       shared.NewBaseEvent(),
		ShipmentOrderID: shipmentOrderID,
		CompanyID:       companyID,
		ExternalID:      externalID,
	}
}

func (e *ShipmentOrderCreated) EventName() string   { return EventShipmentOrderCreated }
func (e *ShipmentOrderCreated) AggregateID() string { return e.ShipmentOrderID.String() }
func (e *ShipmentOrderCreated) RoutingKey() string {
	return shared.RoutingKeyFor(Module, EventShipmentOrderCreated)
}

// RegisterEvents Bind this module's event types into a decode registry
func RegisterEvents(registry *shared.EventRegistry) {
	registry.Register(EventShipmentOrderCreated, func() shared.DomainEvent { return &ShipmentOrderCreated{} })
}
