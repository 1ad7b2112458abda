package shared

import "context"

// UnitOfWork Manages the transaction boundary and aggregate event collection.
// Events pulled from registered aggregates are appended to the outbox store
// inside the same transaction as the business mutation, so both commit or
// roll back together.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)
}

// UnitOfWorkFactory Produces a fresh unit of work per logical call
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// OutboxStore Write side of the transactional outbox.
// Append must run inside the caller's transaction; it never opens one.
type OutboxStore interface {
	Append(ctx context.Context, event DomainEvent) error
}
