package mysql

import (
	"context"
	"testing"
	"time"

	"tms/domain/company"
	"tms/domain/shared"
	"tms/infrastructure/persistence/mysql/po"
	"tms/infrastructure/persistence/retry"
	"tms/infrastructure/persistence/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUowFixture(t *testing.T) (*gorm.DB, *UnitOfWorkFactory) {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&po.CompanyPO{}, &po.AgreementPO{}))
	require.NoError(t, db.Table("company_outbox").AutoMigrate(&po.OutboxRecord{}))

	registry := shared.NewEventRegistry()
	company.RegisterEvents(registry)

	executor := NewTransactionalExecutor(routing.NewRouter(db, nil), 0)
	outboxRepo := NewOutboxRepository(db, company.Module, registry, time.Minute)
	return db, NewUnitOfWorkFactory(executor, outboxRepo, retry.DefaultConfig)
}

func TestUnitOfWorkAppendsAggregateEvents(t *testing.T) {
	db, factory := newUowFixture(t)
	repo := NewCompanyRepository(db)

	uow := factory.New()
	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		c, err := company.NewCompany("Acme Logistics", "12.345.678/0001-95")
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterNew(c)
		return nil
	})
	require.NoError(t, err)

	var records []po.OutboxRecord
	require.NoError(t, db.Table("company_outbox").Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, company.EventCompanyCreated, records[0].EventType)
	assert.Equal(t, po.StatusPending, records[0].Status)

	var companies int64
	require.NoError(t, db.Model(&po.CompanyPO{}).Count(&companies).Error)
	assert.Equal(t, int64(1), companies)
}

func TestUnitOfWorkRollsBackBusinessRowAndEvents(t *testing.T) {
	db, factory := newUowFixture(t)
	repo := NewCompanyRepository(db)

	boom := assert.AnError
	uow := factory.New()
	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		c, err := company.NewCompany("Acme Logistics", "12.345.678/0001-95")
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, c); err != nil {
			return err
		}
		uow.RegisterNew(c)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var companies, events int64
	require.NoError(t, db.Model(&po.CompanyPO{}).Count(&companies).Error)
	require.NoError(t, db.Table("company_outbox").Count(&events).Error)
	assert.Equal(t, int64(0), companies, "business row must roll back")
	assert.Equal(t, int64(0), events, "event rows must roll back with it")
}

func TestUnitOfWorkRetriesTransientFailures(t *testing.T) {
	_, factory := newUowFixture(t)

	attempts := 0
	uow := factory.New().(*UnitOfWork)
	uow.SetRetryConfig(retry.Config{
		Enabled:      true,
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		RetryPredicate: func(err error) bool {
			return err == assert.AnError
		},
	})

	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}
