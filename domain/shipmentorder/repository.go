package shipmentorder

import (
	"context"

	"github.com/google/uuid"
)

// Repository Persistence port for the shipment order aggregate
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShipmentOrder, error)
	Save(ctx context.Context, order *ShipmentOrder) error
}

// CompanyProjectionRepository Persistence port for the local company
// projection synchronized from company module events
type CompanyProjectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Upsert(ctx context.Context, company *Company) error
}
