package mysql

import (
	"fmt"

	"context"

	"tms/domain/shared"
	"tms/infrastructure/persistence/retry"
)

// UnitOfWork Manages one business transaction and the event flow into the
// outbox. Business logic registers the aggregates it touched; after the
// action succeeds, the events pulled from those aggregates are appended to
// the module's outbox table inside the same transaction, so the business
// rows and the event rows commit or roll back together.
//
// A UnitOfWork instance serves a single Execute call; use the factory to
// obtain one per request.
type UnitOfWork struct {
	executor    *TransactionalExecutor
	outbox      *OutboxRepository
	aggregates  []shared.AggregateRoot
	retryConfig retry.Config
}

// NewUnitOfWork Create a unit of work draining events into outbox
func NewUnitOfWork(executor *TransactionalExecutor, outbox *OutboxRepository) *UnitOfWork {
	return &UnitOfWork{
		executor:    executor,
		outbox:      outbox,
		retryConfig: retry.DefaultConfig,
	}
}

// SetRetryConfig Override the retry policy for this unit of work
func (u *UnitOfWork) SetRetryConfig(config retry.Config) {
	u.retryConfig = config
}

// Execute Run fn inside a read-write transaction.
// On success the events recorded by registered aggregates are appended to
// the outbox before commit. Transient failures (deadlock, lock timeout) are
// retried with a fresh transaction and a reset aggregate set.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	executeOnce := func(ctx context.Context) error {
		// Reset aggregates for this attempt
		u.aggregates = u.aggregates[:0]

		return u.executor.RunInTransaction(ctx, func(txCtx context.Context) error {
			if err := fn(txCtx); err != nil {
				return err
			}

			for _, agg := range u.aggregates {
				for _, event := range agg.PullEvents() {
					if err := u.outbox.Append(txCtx, event); err != nil {
						return fmt.Errorf("saving event to outbox: %w", err)
					}
				}
			}
			return nil
		})
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

// RegisterNew Register a newly created aggregate for event collection
func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// RegisterDirty Register a modified aggregate for event collection
func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// RegisterRemoved Register a deleted aggregate for event collection
func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// Compile-time check that UnitOfWork implements shared.UnitOfWork
var _ shared.UnitOfWork = (*UnitOfWork)(nil)
