package mysql

import (
	"tms/domain/shared"
	"tms/infrastructure/persistence/retry"
)

// UnitOfWorkFactory Produces one UnitOfWork per request for a module.
// Units of work carry per-call aggregate state and must not be shared
// across concurrent requests.
type UnitOfWorkFactory struct {
	executor    *TransactionalExecutor
	outbox      *OutboxRepository
	retryConfig retry.Config
}

// NewUnitOfWorkFactory Create a factory bound to one module's outbox
func NewUnitOfWorkFactory(executor *TransactionalExecutor, outbox *OutboxRepository, retryConfig retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		executor:    executor,
		outbox:      outbox,
		retryConfig: retryConfig,
	}
}

// New Create a fresh unit of work
func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	uow := NewUnitOfWork(f.executor, f.outbox)
	uow.SetRetryConfig(f.retryConfig)
	return uow
}

var _ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
