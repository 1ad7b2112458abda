package company

import (
	"tms/domain/shared"

	"github.com/google/uuid"
)

// Event type discriminators, persisted in the outbox type column.
const (
	EventCompanyCreated   = "CompanyCreated"
	EventAgreementCreated = "AgreementCreated"
	EventAgreementRemoved = "AgreementRemoved"
)

// CompanyCreated A company entered the system
type CompanyCreated struct {
	shared.BaseEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Cnpj      string    `json:"cnpj"`
}

// NewCompanyCreated Record the creation of a company
func NewCompanyCreated(companyID uuid.UUID, name, cnpj string) *CompanyCreated {
	return &CompanyCreated{
		BaseEvent: shared.NewBaseEvent(),
		CompanyID: companyID,
		Name:      name,
		Cnpj:      cnpj,
	}
}

func (e *CompanyCreated) EventName() string   { return EventCompanyCreated }
func (e *CompanyCreated) AggregateID() string { return e.CompanyID.String() }
func (e *CompanyCreated) RoutingKey() string {
	return shared.RoutingKeyFor(Module, EventCompanyCreated)
}

// AgreementCreated A commercial agreement was established between two companies
type AgreementCreated struct {
	shared.BaseEvent
	SourceCompanyID      uuid.UUID `json:"source_company_id"`
	AgreementID          uuid.UUID `json:"agreement_id"`
	DestinationCompanyID uuid.UUID `json:"destination_company_id"`
	AgreementType        string    `json:"agreement_type"`
}

// NewAgreementCreated Record the creation of an agreement
func NewAgreementCreated(sourceCompanyID, agreementID, destinationCompanyID uuid.UUID, agreementType string) *AgreementCreated {
	return &AgreementCreated{
		BaseEvent:            shared.NewBaseEvent(),
		SourceCompanyID:      sourceCompanyID,
		AgreementID:          agreementID,
		DestinationCompanyID: destinationCompanyID,
		AgreementType:        agreementType,
	}
}

func (e *AgreementCreated) EventName() string   { return EventAgreementCreated }
func (e *AgreementCreated) AggregateID() string { return e.SourceCompanyID.String() }
func (e *AgreementCreated) RoutingKey() string {
	return shared.RoutingKeyFor(Module, EventAgreementCreated)
}

// AgreementRemoved A commercial agreement was terminated
type AgreementRemoved struct {
	shared.BaseEvent
	SourceCompanyID      uuid.UUID `json:"source_company_id"`
	AgreementID          uuid.UUID `json:"agreement_id"`
	DestinationCompanyID uuid.UUID `json:"destination_company_id"`
}

// NewAgreementRemoved Record the removal of an agreement
func NewAgreementRemoved(sourceCompanyID, agreementID, destinationCompanyID uuid.UUID) *AgreementRemoved {
	return &AgreementRemoved{
		BaseEvent:            shared.NewBaseEvent(),
		SourceCompanyID:      sourceCompanyID,
		AgreementID:          agreementID,
		DestinationCompanyID: destinationCompanyID,
	}
}

func (e *AgreementRemoved) EventName() string   { return EventAgreementRemoved }
func (e *AgreementRemoved) AggregateID() string { return e.SourceCompanyID.String() }
func (e *AgreementRemoved) RoutingKey() string {
	return shared.RoutingKeyFor(Module, EventAgreementRemoved)
}

// RegisterEvents Bind this module's event types into a decode registry
func RegisterEvents(registry *shared.EventRegistry) {
	registry.Register(EventCompanyCreated, func() shared.DomainEvent { return &CompanyCreated{} })
	registry.Register(EventAgreementCreated, func() shared.DomainEvent { return &AgreementCreated{} })
	registry.Register(EventAgreementRemoved, func() shared.DomainEvent { return &AgreementRemoved{} })
}
