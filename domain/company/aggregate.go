package company

import (
	"time"

	"tms/domain/shared"

	"github.com/google/uuid"
)

// Module Schema/namespace this aggregate belongs to
const Module = "company"

// Status Company lifecycle status
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// AgreementType Commercial agreement classification
type AgreementType string

const (
	AgreementTypeDistribution AgreementType = "DISTRIBUTION"
	AgreementTypeTransport    AgreementType = "TRANSPORT"
)

// Agreement Commercial agreement between two companies.
// Owned by the source company aggregate.
type Agreement struct {
	AgreementID          uuid.UUID
	DestinationCompanyID uuid.UUID
	Type                 AgreementType
	CreatedAt            time.Time
}

// Company Aggregate root for the company module.
// Records domain events as it mutates; the unit of work drains them into the
// outbox within the business transaction.
type Company struct {
	shared.EventRecorder

	id         uuid.UUID
	name       string
	cnpj       Cnpj
	status     Status
	agreements []Agreement
	version    int
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCompany Create a company and record CompanyCreated
func NewCompany(name, cnpj string) (*Company, error) {
	if name == "" {
		return nil, shared.NewValidationError("company", "name", "company name cannot be empty")
	}
	parsedCnpj, err := NewCnpj(cnpj)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &Company{
		id:        shared.NewID(),
		name:      name,
		cnpj:      parsedCnpj,
		status:    StatusActive,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	c.Record(NewCompanyCreated(c.id, c.name, c.cnpj.String()))
	return c, nil
}

// Restore Rebuild a company from persistence without recording events
func Restore(id uuid.UUID, name, cnpj string, status Status, agreements []Agreement, version int, createdAt, updatedAt time.Time) *Company {
	return &Company{
		id:         id,
		name:       name,
		cnpj:       Cnpj(cnpj),
		status:     status,
		agreements: agreements,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// AddAgreement Create an agreement with another company and record AgreementCreated
func (c *Company) AddAgreement(destinationCompanyID uuid.UUID, agreementType AgreementType) (*Agreement, error) {
	if destinationCompanyID == uuid.Nil {
		return nil, shared.NewValidationError("agreement", "destination_company_id", "destination company is required")
	}
	if destinationCompanyID == c.id {
		return nil, shared.NewValidationError("agreement", "destination_company_id", "a company cannot hold an agreement with itself")
	}
	for _, a := range c.agreements {
		if a.DestinationCompanyID == destinationCompanyID && a.Type == agreementType {
			return nil, shared.NewConflictError("agreement", "agreement already exists for this company and type")
		}
	}

	agreement := Agreement{
		AgreementID:          shared.NewID(),
		DestinationCompanyID: destinationCompanyID,
		Type:                 agreementType,
		CreatedAt:            time.Now().UTC(),
	}
	c.agreements = append(c.agreements, agreement)
	c.touch()

	c.Record(NewAgreementCreated(c.id, agreement.AgreementID, destinationCompanyID, string(agreementType)))
	return &agreement, nil
}

// RemoveAgreement Remove an agreement and record AgreementRemoved
func (c *Company) RemoveAgreement(agreementID uuid.UUID) error {
	for i, a := range c.agreements {
		if a.AgreementID == agreementID {
			c.agreements = append(c.agreements[:i], c.agreements[i+1:]...)
			c.touch()
			c.Record(NewAgreementRemoved(c.id, agreementID, a.DestinationCompanyID))
			return nil
		}
	}
	return shared.NewNotFoundError("agreement")
}

func (c *Company) touch() {
	c.updatedAt = time.Now().UTC()
	c.version++
}

// ID Aggregate identity
func (c *Company) ID() string { return c.id.String() }

// CompanyID Typed identity
func (c *Company) CompanyID() uuid.UUID { return c.id }

// Name Company display name
func (c *Company) Name() string { return c.name }

// Cnpj Registered tax identifier
func (c *Company) Cnpj() Cnpj { return c.cnpj }

// Status Current lifecycle status
func (c *Company) Status() Status { return c.status }

// Agreements Snapshot of the current agreements
func (c *Company) Agreements() []Agreement {
	out := make([]Agreement, len(c.agreements))
	copy(out, c.agreements)
	return out
}

// Version Optimistic concurrency version
func (c *Company) Version() int { return c.version }

// CreatedAt Creation timestamp
func (c *Company) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt Last mutation timestamp
func (c *Company) UpdatedAt() time.Time { return c.updatedAt }

var _ shared.AggregateRoot = (*Company)(nil)
