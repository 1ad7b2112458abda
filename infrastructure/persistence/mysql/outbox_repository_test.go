package mysql

import (
	"context"
	"testing"
	"time"

	"tms/domain/company"
	"tms/domain/shared"
	"tms/infrastructure/persistence"
	"tms/infrastructure/persistence/mysql/po"
	"tms/infrastructure/persistence/routing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOutboxFixture(t *testing.T) (*gorm.DB, *OutboxRepository, *TransactionalExecutor) {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, db.Table("company_outbox").AutoMigrate(&po.OutboxRecord{}))

	registry := shared.NewEventRegistry()
	company.RegisterEvents(registry)

	repo := NewOutboxRepository(db, company.Module, registry, time.Minute)
	executor := NewTransactionalExecutor(routing.NewRouter(db, nil), 0)
	return db, repo, executor
}

func newTestEvent() shared.DomainEvent {
	return company.NewCompanyCreated(uuid.New(), "Acme Logistics", "12345678000195")
}

func TestAppendRequiresTransaction(t *testing.T) {
	_, repo, _ := newOutboxFixture(t)

	err := repo.Append(context.Background(), newTestEvent())
	require.ErrorIs(t, err, persistence.ErrPersistence)
}

func TestAppendRollsBackWithBusinessTransaction(t *testing.T) {
	db, repo, executor := newOutboxFixture(t)

	boom := assert.AnError
	err := executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if err := repo.Append(ctx, newTestEvent()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Table("company_outbox").Count(&count).Error)
	assert.Equal(t, int64(0), count, "rolled back transaction must not leave outbox rows")
}

func TestAppendCommitsWithBusinessTransaction(t *testing.T) {
	db, repo, executor := newOutboxFixture(t)

	event := newTestEvent()
	err := executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Append(ctx, event)
	})
	require.NoError(t, err)

	var record po.OutboxRecord
	require.NoError(t, db.Table("company_outbox").First(&record).Error)
	assert.Equal(t, event.EventID().String(), record.ID)
	assert.Equal(t, company.EventCompanyCreated, record.EventType)
	assert.Equal(t, po.StatusPending, record.Status)
}

func TestFetchPendingClaimsRecords(t *testing.T) {
	_, repo, executor := newOutboxFixture(t)

	require.NoError(t, executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if err := repo.Append(ctx, newTestEvent()); err != nil {
			return err
		}
		return repo.Append(ctx, newTestEvent())
	}))

	claimed, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	for _, record := range claimed {
		assert.Equal(t, po.StatusProcessing, record.Status)
		require.NotNil(t, record.LeasedUntil)
		assert.True(t, record.LeasedUntil.After(time.Now()))
	}

	// Claimed records are invisible while their lease holds
	again, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestFetchPendingOrdersOldestFirstWithIDTiebreak(t *testing.T) {
	db, repo, _ := newOutboxFixture(t)

	// Two records sharing one timestamp, inserted newest id first
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := po.OutboxRecord{
		ID:          "018f0000-0000-7000-8000-000000000001",
		AggregateID: uuid.NewString(),
		EventType:   company.EventCompanyCreated,
		Content:     "{}",
		Status:      po.StatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	newer := older
	newer.ID = "018f0000-0000-7000-8000-000000000002"
	require.NoError(t, db.Table("company_outbox").Create(&newer).Error)
	require.NoError(t, db.Table("company_outbox").Create(&older).Error)

	claimed, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, older.ID, claimed[0].ID)
	assert.Equal(t, newer.ID, claimed[1].ID)
}

func TestFetchPendingReclaimsExpiredLease(t *testing.T) {
	db, repo, executor := newOutboxFixture(t)

	require.NoError(t, executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Append(ctx, newTestEvent())
	}))

	claimed, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	// Simulate a dispatcher that died mid-flight: expire the lease
	expired := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, db.Table("company_outbox").
		Where("id = ?", claimed[0].ID).
		Update("leased_until", expired).Error)

	reclaimed, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	assert.Equal(t, claimed[0].ID, reclaimed[0].ID)
}

func TestMarkPublishedIsTerminalAndIdempotent(t *testing.T) {
	db, repo, executor := newOutboxFixture(t)

	require.NoError(t, executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Append(ctx, newTestEvent())
	}))
	claimed, err := repo.FetchPending(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	id := claimed[0].ID

	require.NoError(t, repo.MarkPublished(context.Background(), id))
	require.NoError(t, repo.MarkPublished(context.Background(), id), "second ack must be a no-op")

	// A late nack must not resurrect a published record
	require.NoError(t, repo.MarkFailed(context.Background(), id, "late timeout"))

	var record po.OutboxRecord
	require.NoError(t, db.Table("company_outbox").First(&record, "id = ?", id).Error)
	assert.Equal(t, po.StatusPublished, record.Status)

	pending, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "published records never re-enter the pending pool")
}

func TestMarkFailedReturnsRecordToPending(t *testing.T) {
	db, repo, executor := newOutboxFixture(t)

	require.NoError(t, executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Append(ctx, newTestEvent())
	}))
	claimed, err := repo.FetchPending(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	require.NoError(t, repo.MarkFailed(context.Background(), claimed[0].ID, "broker unreachable"))

	var record po.OutboxRecord
	require.NoError(t, db.Table("company_outbox").First(&record, "id = ?", claimed[0].ID).Error)
	assert.Equal(t, po.StatusPending, record.Status)
	assert.Equal(t, 1, record.Attempts)
	assert.Equal(t, "broker unreachable", record.LastError)
}

func TestMarkRejectedExcludesFromDispatch(t *testing.T) {
	_, repo, executor := newOutboxFixture(t)

	require.NoError(t, executor.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Append(ctx, newTestEvent())
	}))
	claimed, err := repo.FetchPending(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	require.NoError(t, repo.MarkRejected(context.Background(), claimed[0].ID, "unknown event type"))

	pending, err := repo.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
