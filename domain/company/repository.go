package company

import (
	"context"

	"github.com/google/uuid"
)

// Repository Persistence port for the company aggregate
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByCnpj(ctx context.Context, cnpj Cnpj) (*Company, error)
	Save(ctx context.Context, company *Company) error
}
