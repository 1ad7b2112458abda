package shipmentorder

import (
	"time"

	"github.com/google/uuid"
)

// Company Local projection of a company owned by the company module.
// Kept in sync by consuming company integration events; this module never
// writes to the company module's tables.
type Company struct {
	CompanyID uuid.UUID
	Name      string
	Active    bool
	SyncedAt  time.Time
}
