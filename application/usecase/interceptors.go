package usecase

import (
	"context"
	"time"

	"tms/infrastructure/persistence"
	"tms/pkg/logger"

	"go.uber.org/zap"
)

// Logging Log use case start, outcome and duration
func Logging(name string) Interceptor {
	return func(ctx context.Context, next Next) (interface{}, error) {
		start := time.Now()
		logger.Debug("Use case started",
			zap.String("use_case", name),
			zap.String("request_id", persistence.RequestIDFromContext(ctx)),
		)

		result, err := next(ctx)

		fields := []zap.Field{
			zap.String("use_case", name),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("Use case failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("Use case completed", fields...)
		}
		return result, err
	}
}

// Role Stamp the datasource role into the call's context.
// The role lives in the derived context only, so it ends with the call and
// never leaks into another request.
func Role(role persistence.Role) Interceptor {
	return func(ctx context.Context, next Next) (interface{}, error) {
		return next(persistence.WithRole(ctx, role))
	}
}

// TransactionRunner Transaction boundary the pipeline delegates to
type TransactionRunner interface {
	RunInTransactionReturning(ctx context.Context, action func(ctx context.Context) (interface{}, error)) (interface{}, error)
	RunInReadOnlyTransactionReturning(ctx context.Context, action func(ctx context.Context) (interface{}, error)) (interface{}, error)
}

// Transactional Run the rest of the pipeline inside a transaction matching
// the role: read-only on the reader for READ, read-write on the writer
// otherwise. Use cases that manage their own transaction (unit of work)
// skip this interceptor; propagation makes nesting harmless either way.
func Transactional(runner TransactionRunner, role persistence.Role) Interceptor {
	return func(ctx context.Context, next Next) (interface{}, error) {
		action := func(txCtx context.Context) (interface{}, error) {
			return next(txCtx)
		}
		if role == persistence.RoleRead {
			return runner.RunInReadOnlyTransactionReturning(ctx, action)
		}
		return runner.RunInTransactionReturning(ctx, action)
	}
}
