package usecase

import (
	"context"
	"time"

	"tms/infrastructure/persistence"
	"tms/pkg/logger"

	"go.uber.org/zap"
)

// Config Declarative shape of one use case.
// Role defaults to WRITE so a use case that forgets to declare itself
// read-only still lands on the primary. Transactional opens the pipeline
// transaction; leave it off for use cases that run a unit of work, which
// owns its own boundary.
type Config struct {
	Name          string
	Role          persistence.Role
	Timeout       time.Duration
	Transactional bool
	OnException   func(ctx context.Context, err error)
}

// UseCase One built pipeline entry point. The interceptor chain is fixed;
// each call supplies the action carrying that request's data.
type UseCase func(ctx context.Context, action Next) (interface{}, error)

// Executor Builds use case entry points with a fixed interceptor order:
// logging, role routing, then the optional transaction. Build runs once per
// use case at startup; the returned UseCase is safe for concurrent calls.
type Executor struct {
	runner TransactionRunner
}

// NewExecutor Create an executor over the given transaction runner
func NewExecutor(runner TransactionRunner) *Executor {
	return &Executor{runner: runner}
}

// Build Assemble the pipeline for one use case
func (e *Executor) Build(config Config) UseCase {
	role := config.Role
	if role == "" {
		role = persistence.RoleWrite
	}

	interceptors := []Interceptor{
		Logging(config.Name),
		Role(role),
	}
	if config.Transactional {
		interceptors = append(interceptors, Transactional(e.runner, role))
	}
	pipeline := Compose(interceptors...)

	return func(ctx context.Context, action Next) (interface{}, error) {
		if config.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, config.Timeout)
			defer cancel()
		}

		result, err := pipeline(ctx, action)
		if err != nil {
			if config.OnException != nil {
				config.OnException(ctx, err)
			} else {
				logger.Debug("Use case error propagated",
					zap.String("use_case", config.Name),
					zap.Error(err),
				)
			}
			return nil, err
		}
		return result, nil
	}
}
