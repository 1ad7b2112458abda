package po

import (
	"time"

	"tms/domain/company"

	"github.com/google/uuid"
)

// CompanyPO Persistence object for the company aggregate
type CompanyPO struct {
	ID        string        `gorm:"type:varchar(36);primaryKey"`
	Name      string        `gorm:"type:varchar(255);not null"`
	Cnpj      string        `gorm:"type:varchar(14);uniqueIndex;not null"`
	Status    string        `gorm:"type:varchar(20);not null"`
	Version   int           `gorm:"not null;default:1"`
	CreatedAt time.Time     `gorm:"not null"`
	UpdatedAt time.Time     `gorm:"not null"`
	Agreement []AgreementPO `gorm:"foreignKey:SourceCompanyID;references:ID"`
}

func (CompanyPO) TableName() string {
	return "companies"
}

// AgreementPO Persistence object for an agreement row owned by the source company
type AgreementPO struct {
	ID                   string    `gorm:"type:varchar(36);primaryKey"`
	SourceCompanyID      string    `gorm:"type:varchar(36);index;not null"`
	DestinationCompanyID string    `gorm:"type:varchar(36);not null"`
	Type                 string    `gorm:"type:varchar(20);not null"`
	CreatedAt            time.Time `gorm:"not null"`
}

func (AgreementPO) TableName() string {
	return "agreements"
}

// FromCompanyDomain Map the aggregate to its persistence objects
func FromCompanyDomain(c *company.Company) *CompanyPO {
	agreements := c.Agreements()
	agreementPOs := make([]AgreementPO, len(agreements))
	for i, a := range agreements {
		agreementPOs[i] = AgreementPO{
			ID:                   a.AgreementID.String(),
			SourceCompanyID:      c.ID(),
			DestinationCompanyID: a.DestinationCompanyID.String(),
			Type:                 string(a.Type),
			CreatedAt:            a.CreatedAt,
		}
	}
	return &CompanyPO{
		ID:        c.ID(),
		Name:      c.Name(),
		Cnpj:      c.Cnpj().String(),
		Status:    string(c.Status()),
		Version:   c.Version(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
		Agreement: agreementPOs,
	}
}

// ToDomain Rebuild the aggregate from the persistence objects
func (p *CompanyPO) ToDomain() (*company.Company, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, err
	}
	agreements := make([]company.Agreement, 0, len(p.Agreement))
	for _, a := range p.Agreement {
		agreementID, err := uuid.Parse(a.ID)
		if err != nil {
			return nil, err
		}
		destinationID, err := uuid.Parse(a.DestinationCompanyID)
		if err != nil {
			return nil, err
		}
		agreements = append(agreements, company.Agreement{
			AgreementID:          agreementID,
			DestinationCompanyID: destinationID,
			Type:                 company.AgreementType(a.Type),
			CreatedAt:            a.CreatedAt,
		})
	}
	return company.Restore(
		id,
		p.Name,
		p.Cnpj,
		company.Status(p.Status),
		agreements,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	), nil
}
