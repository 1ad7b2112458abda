package company

import (
	"context"
	"time"

	"tms/application/usecase"
	"tms/domain/company"
	"tms/domain/shared"
	"tms/infrastructure/persistence"

	"github.com/google/uuid"
)

// ApplicationService Company application service.
// Writes run through a unit of work so aggregate events land in the
// company outbox within the business transaction; reads run through a
// read-only pipeline routed to the replica. Each use case pipeline is
// built once here; requests only supply the action.
type ApplicationService struct {
	companyRepo company.Repository
	uowFactory  shared.UnitOfWorkFactory

	createCompany   usecase.UseCase
	createAgreement usecase.UseCase
	removeAgreement usecase.UseCase
	getCompany      usecase.UseCase
}

// NewApplicationService Create company application service
func NewApplicationService(
	companyRepo company.Repository,
	uowFactory shared.UnitOfWorkFactory,
	executor *usecase.Executor,
) *ApplicationService {
	return &ApplicationService{
		companyRepo: companyRepo,
		uowFactory:  uowFactory,
		createCompany: executor.Build(usecase.Config{
			Name: "company.create",
			Role: persistence.RoleWrite,
		}),
		createAgreement: executor.Build(usecase.Config{
			Name: "company.create_agreement",
			Role: persistence.RoleWrite,
		}),
		removeAgreement: executor.Build(usecase.Config{
			Name: "company.remove_agreement",
			Role: persistence.RoleWrite,
		}),
		getCompany: executor.Build(usecase.Config{
			Name:          "company.get",
			Role:          persistence.RoleRead,
			Transactional: true,
		}),
	}
}

// CreateCompanyRequest Create company request DTO
type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
	Cnpj string `json:"cnpj" binding:"required"`
}

// CreateAgreementRequest Create agreement request DTO
type CreateAgreementRequest struct {
	DestinationCompanyID string `json:"destination_company_id" binding:"required,uuid"`
	Type                 string `json:"type" binding:"required,oneof=DISTRIBUTION TRANSPORT"`
}

// AgreementResponse Agreement response DTO
type AgreementResponse struct {
	AgreementID          string    `json:"agreement_id"`
	DestinationCompanyID string    `json:"destination_company_id"`
	Type                 string    `json:"type"`
	CreatedAt            time.Time `json:"created_at"`
}

// CompanyResponse Company response DTO
type CompanyResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Cnpj       string              `json:"cnpj"`
	Status     string              `json:"status"`
	Agreements []AgreementResponse `json:"agreements"`
	Version    int                 `json:"version"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// CreateCompany Register a company and emit CompanyCreated through the outbox
func (s *ApplicationService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	result, err := s.createCompany(ctx, func(ctx context.Context) (interface{}, error) {
		var created *company.Company

		uow := s.uowFactory.New()
		err := uow.Execute(ctx, func(ctx context.Context) error {
			cnpj, err := company.NewCnpj(req.Cnpj)
			if err != nil {
				return err
			}
			existing, err := s.companyRepo.FindByCnpj(ctx, cnpj)
			if err != nil {
				return err
			}
			if existing != nil {
				return company.ErrCnpjExists
			}

			created, err = company.NewCompany(req.Name, req.Cnpj)
			if err != nil {
				return err
			}
			if err := s.companyRepo.Save(ctx, created); err != nil {
				return err
			}
			uow.RegisterNew(created)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return convertToResponse(created), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*CompanyResponse), nil
}

// CreateAgreement Add an agreement between two companies and emit AgreementCreated
func (s *ApplicationService) CreateAgreement(ctx context.Context, companyID uuid.UUID, req CreateAgreementRequest) (*AgreementResponse, error) {
	result, err := s.createAgreement(ctx, func(ctx context.Context) (interface{}, error) {
		destinationID, err := uuid.Parse(req.DestinationCompanyID)
		if err != nil {
			return nil, shared.NewValidationError("agreement", "destination_company_id", "must be a valid uuid")
		}

		var agreement *company.Agreement

		uow := s.uowFactory.New()
		uowErr := uow.Execute(ctx, func(ctx context.Context) error {
			source, err := s.companyRepo.FindByID(ctx, companyID)
			if err != nil {
				return err
			}
			// Both ends of the agreement must exist
			if _, err := s.companyRepo.FindByID(ctx, destinationID); err != nil {
				return err
			}

			agreement, err = source.AddAgreement(destinationID, company.AgreementType(req.Type))
			if err != nil {
				return err
			}
			if err := s.companyRepo.Save(ctx, source); err != nil {
				return err
			}
			uow.RegisterDirty(source)
			return nil
		})
		if uowErr != nil {
			return nil, uowErr
		}
		return convertAgreement(*agreement), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*AgreementResponse), nil
}

// RemoveAgreement Remove an agreement and emit AgreementRemoved
func (s *ApplicationService) RemoveAgreement(ctx context.Context, companyID, agreementID uuid.UUID) error {
	_, err := s.removeAgreement(ctx, func(ctx context.Context) (interface{}, error) {
		uow := s.uowFactory.New()
		err := uow.Execute(ctx, func(ctx context.Context) error {
			source, err := s.companyRepo.FindByID(ctx, companyID)
			if err != nil {
				return err
			}
			if err := source.RemoveAgreement(agreementID); err != nil {
				return err
			}
			if err := s.companyRepo.Save(ctx, source); err != nil {
				return err
			}
			uow.RegisterDirty(source)
			return nil
		})
		return nil, err
	})
	return err
}

// GetCompany Read a company from the replica
func (s *ApplicationService) GetCompany(ctx context.Context, companyID uuid.UUID) (*CompanyResponse, error) {
	result, err := s.getCompany(ctx, func(ctx context.Context) (interface{}, error) {
		found, err := s.companyRepo.FindByID(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return convertToResponse(found), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*CompanyResponse), nil
}

func convertAgreement(a company.Agreement) *AgreementResponse {
	return &AgreementResponse{
		AgreementID:          a.AgreementID.String(),
		DestinationCompanyID: a.DestinationCompanyID.String(),
		Type:                 string(a.Type),
		CreatedAt:            a.CreatedAt,
	}
}

func convertToResponse(c *company.Company) *CompanyResponse {
	agreements := c.Agreements()
	agreementResponses := make([]AgreementResponse, len(agreements))
	for i, a := range agreements {
		agreementResponses[i] = *convertAgreement(a)
	}
	return &CompanyResponse{
		ID:         c.ID(),
		Name:       c.Name(),
		Cnpj:       c.Cnpj().String(),
		Status:     string(c.Status()),
		Agreements: agreementResponses,
		Version:    c.Version(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
}
