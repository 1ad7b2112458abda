package cmd

import (
	"fmt"

	companyapp "tms/application/company"
	orderapp "tms/application/shipmentorder"
	"tms/application/usecase"
	"tms/config"
	"tms/domain/company"
	"tms/domain/shared"
	"tms/domain/shipmentorder"
	"tms/infrastructure/persistence/mysql"
	"tms/infrastructure/persistence/retry"
	"tms/infrastructure/persistence/routing"
	"tms/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container Shared wiring for all three processes (server, worker,
// consumer): database pair, router, registries, outbox stores and the
// application services.
type Container struct {
	Config *config.Config
	Router *routing.Router

	CompanyRegistry       *shared.EventRegistry
	ShipmentOrderRegistry *shared.EventRegistry

	CompanyOutbox       *mysql.OutboxRepository
	ShipmentOrderOutbox *mysql.OutboxRepository

	CompanyService       *companyapp.ApplicationService
	ShipmentOrderService *orderapp.ApplicationService
}

// NewContainer Connect the database pair and wire every component
func NewContainer(cfg *config.Config) (*Container, error) {
	writer, reader, err := mysql.OpenPair(&cfg.Database, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("opening database pair: %w", err)
	}

	if cfg.IsDevelopment() {
		if err := mysql.AutoMigrate(writer); err != nil {
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
	}

	router := routing.NewRouter(writer, reader)
	if reader == nil {
		logger.Info("No read replica configured, routing all reads to the writer")
	}

	companyRegistry := shared.NewEventRegistry()
	company.RegisterEvents(companyRegistry)
	orderRegistry := shared.NewEventRegistry()
	shipmentorder.RegisterEvents(orderRegistry)

	companyOutbox := mysql.NewOutboxRepository(writer, company.Module, companyRegistry, cfg.Outbox.LeaseTime)
	orderOutbox := mysql.NewOutboxRepository(writer, shipmentorder.Module, orderRegistry, cfg.Outbox.LeaseTime)

	txExecutor := mysql.NewTransactionalExecutor(router, cfg.Database.TxTimeout)
	retryConfig := retry.FromAppConfig(cfg)
	executor := usecase.NewExecutor(txExecutor)

	companyUowFactory := mysql.NewUnitOfWorkFactory(txExecutor, companyOutbox, retryConfig)
	orderUowFactory := mysql.NewUnitOfWorkFactory(txExecutor, orderOutbox, retryConfig)

	companyRepo := mysql.NewCompanyRepository(writer)
	orderRepo := mysql.NewShipmentOrderRepository(writer)
	projectionRepo := mysql.NewCompanyProjectionRepository(writer)

	companyService := companyapp.NewApplicationService(companyRepo, companyUowFactory, executor)
	orderService := orderapp.NewApplicationService(orderRepo, projectionRepo, orderUowFactory, executor)

	logger.Info("Container wired",
		zap.Bool("reader", reader != nil),
		zap.Duration("tx_timeout", cfg.Database.TxTimeout),
	)

	return &Container{
		Config:                cfg,
		Router:                router,
		CompanyRegistry:       companyRegistry,
		ShipmentOrderRegistry: orderRegistry,
		CompanyOutbox:         companyOutbox,
		ShipmentOrderOutbox:   orderOutbox,
		CompanyService:        companyService,
		ShipmentOrderService:  orderService,
	}, nil
}

// Writer Primary database connection
func (c *Container) Writer() *gorm.DB {
	return c.Router.Writer()
}
