package usecase

import "context"

// Next Continuation to the remainder of the pipeline
type Next func(ctx context.Context) (interface{}, error)

// Interceptor Wraps the rest of the pipeline.
// An interceptor may enrich the context, short-circuit by not calling next,
// or act on the result on the way back out. It must call next at most once.
type Interceptor func(ctx context.Context, next Next) (interface{}, error)

// Chain Compose interceptors around the action.
// The first interceptor is outermost: Chain(a, i1, i2) runs i1(i2(a)).
func Chain(action Next, interceptors ...Interceptor) Next {
	chained := action
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		inner := chained
		chained = func(ctx context.Context) (interface{}, error) {
			return interceptor(ctx, inner)
		}
	}
	return chained
}

// Compose Fold interceptors into a single one, first outermost.
// Unlike Chain, the action is not bound yet: the fold happens once at build
// time and the composed interceptor wraps whatever action each call supplies.
func Compose(interceptors ...Interceptor) Interceptor {
	composed := func(ctx context.Context, next Next) (interface{}, error) {
		return next(ctx)
	}
	for i := len(interceptors) - 1; i >= 0; i-- {
		outer := interceptors[i]
		inner := composed
		composed = func(ctx context.Context, next Next) (interface{}, error) {
			return outer(ctx, func(ctx context.Context) (interface{}, error) {
				return inner(ctx, next)
			})
		}
	}
	return composed
}
