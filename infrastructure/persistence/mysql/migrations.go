package mysql

import (
	"fmt"

	"tms/domain/company"
	"tms/domain/shipmentorder"
	"tms/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// AutoMigrate Create or update the schema on the writer.
// Each module gets its own outbox table alongside its business tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&po.CompanyPO{},
		&po.AgreementPO{},
		&po.ShipmentOrderPO{},
		&po.CompanyProjectionPO{},
	); err != nil {
		return fmt.Errorf("migrating business tables: %w", err)
	}

	for _, module := range []string{company.Module, shipmentorder.Module} {
		table := module + "_outbox"
		if err := db.Table(table).AutoMigrate(&po.OutboxRecord{}); err != nil {
			return fmt.Errorf("migrating outbox table %s: %w", table, err)
		}
	}
	return nil
}
