package shipmentorder

import (
	"context"
	"errors"
	"time"

	"tms/application/usecase"
	"tms/domain/shared"
	"tms/domain/shipmentorder"
	"tms/infrastructure/persistence"

	"github.com/google/uuid"
)

// ApplicationService Shipment order application service.
// Orders reference companies only through the module's local projection,
// which the consumer keeps in sync from company integration events. Each
// use case pipeline is built once here; requests only supply the action.
type ApplicationService struct {
	orderRepo      shipmentorder.Repository
	projectionRepo shipmentorder.CompanyProjectionRepository
	uowFactory     shared.UnitOfWorkFactory

	createOrder        usecase.UseCase
	getOrder           usecase.UseCase
	synchronizeCompany usecase.UseCase
}

// NewApplicationService Create shipment order application service
func NewApplicationService(
	orderRepo shipmentorder.Repository,
	projectionRepo shipmentorder.CompanyProjectionRepository,
	uowFactory shared.UnitOfWorkFactory,
	executor *usecase.Executor,
) *ApplicationService {
	return &ApplicationService{
		orderRepo:      orderRepo,
		projectionRepo: projectionRepo,
		uowFactory:     uowFactory,
		createOrder: executor.Build(usecase.Config{
			Name: "shipment_order.create",
			Role: persistence.RoleWrite,
		}),
		getOrder: executor.Build(usecase.Config{
			Name:          "shipment_order.get",
			Role:          persistence.RoleRead,
			Transactional: true,
		}),
		synchronizeCompany: executor.Build(usecase.Config{
			Name:          "shipment_order.synchronize_company",
			Role:          persistence.RoleWrite,
			Transactional: true,
		}),
	}
}

// CreateShipmentOrderRequest Create shipment order request DTO
type CreateShipmentOrderRequest struct {
	CompanyID  string `json:"company_id" binding:"required,uuid"`
	ExternalID string `json:"external_id" binding:"required"`
}

// ShipmentOrderResponse Shipment order response DTO
type ShipmentOrderResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	ExternalID string    `json:"external_id"`
	Archived   bool      `json:"archived"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateShipmentOrder Create an order for a known company and emit
// ShipmentOrderCreated through the outbox
func (s *ApplicationService) CreateShipmentOrder(ctx context.Context, req CreateShipmentOrderRequest) (*ShipmentOrderResponse, error) {
	result, err := s.createOrder(ctx, func(ctx context.Context) (interface{}, error) {
		companyID, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return nil, shared.NewValidationError("shipment_order", "company_id", "must be a valid uuid")
		}

		var created *shipmentorder.ShipmentOrder

		uow := s.uowFactory.New()
		uowErr := uow.Execute(ctx, func(ctx context.Context) error {
			projection, err := s.projectionRepo.FindByID(ctx, companyID)
			if err != nil {
				return err
			}
			if !projection.Active {
				return shipmentorder.ErrUnknownCompany
			}

			created, err = shipmentorder.NewShipmentOrder(companyID, req.ExternalID)
			if err != nil {
				return err
			}
			if err := s.orderRepo.Save(ctx, created); err != nil {
				return err
			}
			uow.RegisterNew(created)
			return nil
		})
		if uowErr != nil {
			return nil, uowErr
		}
		return convertToResponse(created), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ShipmentOrderResponse), nil
}

// GetShipmentOrder Read an order from the replica
func (s *ApplicationService) GetShipmentOrder(ctx context.Context, orderID uuid.UUID) (*ShipmentOrderResponse, error) {
	result, err := s.getOrder(ctx, func(ctx context.Context) (interface{}, error) {
		found, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return convertToResponse(found), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ShipmentOrderResponse), nil
}

// SynchronizeCompanyRequest Company snapshot carried by a company
// integration event
type SynchronizeCompanyRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
}

// SynchronizeCompany Upsert the local company projection from an
// integration event. Idempotent: replaying the same event converges on the
// same row.
func (s *ApplicationService) SynchronizeCompany(ctx context.Context, req SynchronizeCompanyRequest) error {
	_, err := s.synchronizeCompany(ctx, func(ctx context.Context) (interface{}, error) {
		companyID, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return nil, shared.NewValidationError("company_projection", "company_id", "must be a valid uuid")
		}
		if req.Name == "" {
			return nil, shared.NewValidationError("company_projection", "name", "name is required")
		}

		existing, err := s.projectionRepo.FindByID(ctx, companyID)
		if err != nil && !errors.Is(err, shipmentorder.ErrUnknownCompany) {
			return nil, err
		}
		projection := &shipmentorder.Company{
			CompanyID: companyID,
			Name:      req.Name,
			Active:    req.Active,
			SyncedAt:  time.Now().UTC(),
		}
		if existing != nil && existing.Name == projection.Name && existing.Active == projection.Active {
			// Already in sync, skip the write
			return nil, nil
		}
		return nil, s.projectionRepo.Upsert(ctx, projection)
	})
	return err
}

func convertToResponse(o *shipmentorder.ShipmentOrder) *ShipmentOrderResponse {
	return &ShipmentOrderResponse{
		ID:         o.ID(),
		CompanyID:  o.CompanyID().String(),
		ExternalID: o.ExternalID(),
		Archived:   o.Archived(),
		Version:    o.Version(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}
