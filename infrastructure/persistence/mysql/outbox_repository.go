package mysql

import (
	"context"
	"fmt"
	"time"

	"tms/domain/shared"
	"tms/infrastructure/persistence"
	"tms/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// OutboxRepository GORM implementation of the transactional outbox store.
// Each business module owns its own outbox table (<module>_outbox), the Go
// rendition of the original per-schema outbox. Delivery is at-least-once:
// the claim/lease step bounds, but does not eliminate, duplicate publishing
// when several dispatcher instances drain the same table.
type OutboxRepository struct {
	db       *gorm.DB
	table    string
	registry *shared.EventRegistry
	lease    time.Duration
}

// NewOutboxRepository Create the outbox store for one module
func NewOutboxRepository(db *gorm.DB, module string, registry *shared.EventRegistry, lease time.Duration) *OutboxRepository {
	if lease <= 0 {
		lease = time.Minute
	}
	return &OutboxRepository{
		db:       db,
		table:    module + "_outbox",
		registry: registry,
		lease:    lease,
	}
}

// Table Outbox table this repository drains
func (r *OutboxRepository) Table() string { return r.table }

// Append Insert the outbox record for event inside the caller's transaction.
// Appending never opens its own transaction: without the caller's, the
// atomicity between business row and event row would be lost, so a missing
// transaction is an error.
func (r *OutboxRepository) Append(ctx context.Context, event shared.DomainEvent) error {
	tx := persistence.TxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("%w: outbox append requires an open transaction", persistence.ErrPersistence)
	}

	record, err := po.FromDomainEvent(event, r.registry)
	if err != nil {
		return err
	}

	if err := tx.Table(r.table).Create(record).Error; err != nil {
		return fmt.Errorf("%w: appending event %s to %s: %v", persistence.ErrPersistence, record.ID, r.table, err)
	}
	return nil
}

// FetchPending Claim up to batchSize undelivered records, oldest first.
// A record is eligible when PENDING, or when PROCESSING with an expired
// lease (a previous dispatcher crashed or lost its broker ack). Each
// returned record has been moved to PROCESSING under a fresh lease by a
// conditional update, so concurrent dispatchers skip records claimed by
// someone else instead of double-delivering them.
func (r *OutboxRepository) FetchPending(ctx context.Context, batchSize int) ([]po.OutboxRecord, error) {
	now := time.Now().UTC()

	var candidates []po.OutboxRecord
	err := r.db.WithContext(ctx).Table(r.table).
		Where("status = ? OR (status = ? AND leased_until < ?)", po.StatusPending, po.StatusProcessing, now).
		// id breaks created_at ties: v7 ids are time-ordered, so oldest
		// first stays deterministic within one timestamp
		Order("created_at ASC, id ASC").
		Limit(batchSize).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("%w: fetching pending from %s: %v", persistence.ErrPersistence, r.table, err)
	}

	leasedUntil := now.Add(r.lease)
	claimed := make([]po.OutboxRecord, 0, len(candidates))
	for _, record := range candidates {
		result := r.db.WithContext(ctx).Table(r.table).
			Where("id = ? AND (status = ? OR (status = ? AND leased_until < ?))",
				record.ID, po.StatusPending, po.StatusProcessing, now).
			Updates(map[string]interface{}{
				"status":       po.StatusProcessing,
				"leased_until": leasedUntil,
				"updated_at":   now,
			})
		if result.Error != nil {
			return nil, fmt.Errorf("%w: claiming %s in %s: %v", persistence.ErrPersistence, record.ID, r.table, result.Error)
		}
		if result.RowsAffected == 0 {
			// Lost the claim to a concurrent dispatcher
			continue
		}
		record.Status = po.StatusProcessing
		record.LeasedUntil = &leasedUntil
		claimed = append(claimed, record)
	}
	return claimed, nil
}

// MarkPublished Flip the record to its terminal success state.
// Idempotent: marking an already-published record again is a no-op, and a
// record never leaves PUBLISHED once there.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Table(r.table).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       po.StatusPublished,
			"leased_until": nil,
			"last_error":   "",
			"updated_at":   time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: marking %s published in %s: %v", persistence.ErrPersistence, id, r.table, err)
	}
	return nil
}

// MarkFailed Return the record to the pending pool for the next tick.
// Failures are retried indefinitely; attempts and last_error exist for
// operator diagnosis, not for dead-lettering. A record that already reached
// PUBLISHED (late duplicate nack) is left untouched.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, cause string) error {
	err := r.db.WithContext(ctx).Table(r.table).
		Where("id = ? AND status <> ?", id, po.StatusPublished).
		Updates(map[string]interface{}{
			"status":       po.StatusPending,
			"leased_until": nil,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   truncateCause(cause),
			"updated_at":   time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: marking %s failed in %s: %v", persistence.ErrPersistence, id, r.table, err)
	}
	return nil
}

// MarkRejected Exclude a poison record from dispatch permanently.
// Used when the content cannot be deserialized: retrying would fail forever
// and stall the batch with noise.
func (r *OutboxRepository) MarkRejected(ctx context.Context, id string, cause string) error {
	err := r.db.WithContext(ctx).Table(r.table).
		Where("id = ? AND status <> ?", id, po.StatusPublished).
		Updates(map[string]interface{}{
			"status":       po.StatusRejected,
			"leased_until": nil,
			"last_error":   truncateCause(cause),
			"updated_at":   time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: marking %s rejected in %s: %v", persistence.ErrPersistence, id, r.table, err)
	}
	return nil
}

// Registry Decode registry for this module's events
func (r *OutboxRepository) Registry() *shared.EventRegistry { return r.registry }

func truncateCause(cause string) string {
	const max = 500
	if len(cause) > max {
		return cause[:max]
	}
	return cause
}

// Compile-time interface implementation check
var _ shared.OutboxStore = (*OutboxRepository)(nil)
