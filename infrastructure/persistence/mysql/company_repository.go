package mysql

import (
	"context"
	"errors"
	"strings"

	"tms/domain/company"
	"tms/domain/shared"
	"tms/infrastructure/persistence"
	"tms/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyRepository GORM implementation of the company persistence port
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "1062") ||
		strings.Contains(errStr, "UNIQUE constraint failed")
}

func (r *CompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var companyPO po.CompanyPO
	result := r.getDB(ctx).Preload("Agreement").First(&companyPO, "id = ?", id.String())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, result.Error
	}

	return companyPO.ToDomain()
}

func (r *CompanyRepository) FindByCnpj(ctx context.Context, cnpj company.Cnpj) (*company.Company, error) {
	var companyPO po.CompanyPO
	result := r.getDB(ctx).Preload("Agreement").First(&companyPO, "cnpj = ?", cnpj.String())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return companyPO.ToDomain()
}

// Save Persist the aggregate and its agreement rows.
// Creates on first version, otherwise updates guarded by the aggregate
// version so a stale writer cannot silently overwrite a concurrent commit.
func (r *CompanyRepository) Save(ctx context.Context, c *company.Company) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, c)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, c)
	})
}

func (r *CompanyRepository) saveWithTx(tx *gorm.DB, c *company.Company) error {
	companyPO := po.FromCompanyDomain(c)
	agreements := companyPO.Agreement
	companyPO.Agreement = nil

	if c.Version() == 1 {
		if err := tx.Create(companyPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return company.ErrCnpjExists
			}
			return err
		}
	} else {
		result := tx.Model(&po.CompanyPO{}).
			Where("id = ? AND version < ?", companyPO.ID, companyPO.Version).
			Updates(map[string]interface{}{
				"name":       companyPO.Name,
				"cnpj":       companyPO.Cnpj,
				"status":     companyPO.Status,
				"version":    companyPO.Version,
				"updated_at": companyPO.UpdatedAt,
			})
		if result.Error != nil {
			if isDuplicateKeyError(result.Error) {
				return company.ErrCnpjExists
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&po.CompanyPO{}).Where("id = ?", companyPO.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return company.ErrCompanyNotFound
			}
			return shared.NewConflictError("company", "concurrent modification detected")
		}
	}

	// Agreements are fully owned by the aggregate; replace the row set
	if err := tx.Where("source_company_id = ?", companyPO.ID).Delete(&po.AgreementPO{}).Error; err != nil {
		return err
	}
	if len(agreements) > 0 {
		if err := tx.Create(&agreements).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ company.Repository = (*CompanyRepository)(nil)
