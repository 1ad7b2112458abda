package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tms/infrastructure/persistence"
	"tms/infrastructure/persistence/routing"

	"gorm.io/gorm"
)

// TransactionalExecutor Opens, commits and rolls back transactions on the
// connection selected by the datasource router. The read-only variants stamp
// the READ role into the action's context before resolving the connection,
// so the router picks the replica; the role lives only in the derived
// context and cannot outlive the call.
//
// Nested policy: a call that already runs inside a transaction reuses it
// (propagation). A read-only action nested in a write transaction therefore
// reads its own uncommitted writes.
type TransactionalExecutor struct {
	router  *routing.Router
	timeout time.Duration
}

// NewTransactionalExecutor Create an executor with the given per-transaction timeout
func NewTransactionalExecutor(router *routing.Router, timeout time.Duration) *TransactionalExecutor {
	return &TransactionalExecutor{router: router, timeout: timeout}
}

// RunInTransaction Execute action inside a read-write transaction on the writer
func (e *TransactionalExecutor) RunInTransaction(ctx context.Context, action func(ctx context.Context) error) error {
	return e.run(ctx, persistence.RoleWrite, action)
}

// RunInReadOnlyTransaction Execute action inside a read-only transaction on the reader
func (e *TransactionalExecutor) RunInReadOnlyTransaction(ctx context.Context, action func(ctx context.Context) error) error {
	return e.run(ctx, persistence.RoleRead, action)
}

// RunInTransactionReturning Value-returning variant of RunInTransaction
func (e *TransactionalExecutor) RunInTransactionReturning(ctx context.Context, action func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	var out interface{}
	err := e.run(ctx, persistence.RoleWrite, func(ctx context.Context) error {
		var actionErr error
		out, actionErr = action(ctx)
		return actionErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunInReadOnlyTransactionReturning Value-returning variant of RunInReadOnlyTransaction
func (e *TransactionalExecutor) RunInReadOnlyTransactionReturning(ctx context.Context, action func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	var out interface{}
	err := e.run(ctx, persistence.RoleRead, func(ctx context.Context) error {
		var actionErr error
		out, actionErr = action(ctx)
		return actionErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *TransactionalExecutor) run(ctx context.Context, role persistence.Role, action func(ctx context.Context) error) error {
	// Propagation: join the transaction already open on this call
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return action(ctx)
	}

	ctx = persistence.WithRole(ctx, role)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	db := e.router.Resolve(ctx)

	var tx *gorm.DB
	if role == persistence.RoleRead && db.Dialector.Name() == "mysql" {
		// START TRANSACTION READ ONLY lets the server reject stray writes;
		// other dialects lack the option and rely on routing alone
		tx = db.Begin(&sql.TxOptions{ReadOnly: true})
	} else {
		tx = db.Begin()
	}
	if tx.Error != nil {
		return fmt.Errorf("%w: beginning transaction: %v", persistence.ErrPersistence, tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := action(persistence.ContextWithTx(ctx, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: committing transaction: %v", persistence.ErrPersistence, err)
	}
	return nil
}
