package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"tms/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records which transaction variant the pipeline picked
type fakeRunner struct {
	readOnlyCalls int
	writeCalls    int
}

func (r *fakeRunner) RunInTransactionReturning(ctx context.Context, action func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	r.writeCalls++
	return action(ctx)
}

func (r *fakeRunner) RunInReadOnlyTransactionReturning(ctx context.Context, action func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	r.readOnlyCalls++
	return action(ctx)
}

func TestChainRunsInterceptorsInOrder(t *testing.T) {
	var order []string
	tag := func(name string) Interceptor {
		return func(ctx context.Context, next Next) (interface{}, error) {
			order = append(order, name+":in")
			result, err := next(ctx)
			order = append(order, name+":out")
			return result, err
		}
	}

	action := func(ctx context.Context) (interface{}, error) {
		order = append(order, "action")
		return "done", nil
	}

	result, err := Chain(action, tag("outer"), tag("inner"))(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, []string{"outer:in", "inner:in", "action", "inner:out", "outer:out"}, order)
}

func TestComposeKeepsFirstInterceptorOutermost(t *testing.T) {
	var order []string
	tag := func(name string) Interceptor {
		return func(ctx context.Context, next Next) (interface{}, error) {
			order = append(order, name+":in")
			result, err := next(ctx)
			order = append(order, name+":out")
			return result, err
		}
	}

	pipeline := Compose(tag("outer"), tag("inner"))
	result, err := pipeline(context.Background(), func(ctx context.Context) (interface{}, error) {
		order = append(order, "action")
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, []string{"outer:in", "inner:in", "action", "inner:out", "outer:out"}, order)
}

func TestExecutorRunsActionOnce(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})
	run := executor.Build(Config{Name: "test.once"})

	calls := 0
	result, err := run(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result)
	assert.Equal(t, 1, calls)
}

func TestBuiltUseCaseServesManyCalls(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})

	// One pipeline built up front, each call bringing its own action
	run := executor.Build(Config{Name: "test.reuse"})

	first, err := run(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "first", nil
	})
	require.NoError(t, err)
	second, err := run(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "second", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
}

func TestExecutorDefaultsToWriteRole(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})
	run := executor.Build(Config{Name: "test.default_role"})

	var observed persistence.Role
	_, err := run(context.Background(), func(ctx context.Context) (interface{}, error) {
		observed = persistence.RoleFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, persistence.RoleWrite, observed)
}

func TestExecutorStampsReadRoleInsideCallOnly(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})
	run := executor.Build(Config{Name: "test.read_role", Role: persistence.RoleRead})

	var observed persistence.Role
	outer := context.Background()
	_, err := run(outer, func(ctx context.Context) (interface{}, error) {
		observed = persistence.RoleFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, persistence.RoleRead, observed)
	assert.Equal(t, persistence.RoleWrite, persistence.RoleFromContext(outer), "role must not leak out of the call")
}

func TestExecutorRestoresWriteRoleWhenActionFails(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})
	run := executor.Build(Config{Name: "test.read_role_failure", Role: persistence.RoleRead})

	boom := errors.New("boom")
	var observed persistence.Role
	outer := context.Background()
	_, err := run(outer, func(ctx context.Context) (interface{}, error) {
		observed = persistence.RoleFromContext(ctx)
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, persistence.RoleRead, observed)
	assert.Equal(t, persistence.RoleWrite, persistence.RoleFromContext(outer), "a failing call must not leave the read role behind")
}

func TestExecutorPicksTransactionVariantByRole(t *testing.T) {
	runner := &fakeRunner{}
	executor := NewExecutor(runner)

	read := executor.Build(Config{Name: "test.read", Role: persistence.RoleRead, Transactional: true})
	write := executor.Build(Config{Name: "test.write", Role: persistence.RoleWrite, Transactional: true})

	noop := func(ctx context.Context) (interface{}, error) { return nil, nil }
	_, err := read(context.Background(), noop)
	require.NoError(t, err)
	_, err = write(context.Background(), noop)
	require.NoError(t, err)

	assert.Equal(t, 1, runner.readOnlyCalls)
	assert.Equal(t, 1, runner.writeCalls)
}

func TestExecutorOnExceptionSeesAndPropagatesError(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})

	boom := errors.New("boom")
	var seen error
	run := executor.Build(Config{
		Name:        "test.on_exception",
		OnException: func(ctx context.Context, err error) { seen = err },
	})

	_, err := run(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom, "the hook observes but never swallows the error")
	assert.Equal(t, boom, seen)
}

func TestExecutorAppliesTimeout(t *testing.T) {
	executor := NewExecutor(&fakeRunner{})
	run := executor.Build(Config{Name: "test.timeout", Timeout: 10 * time.Millisecond})

	_, err := run(context.Background(), func(ctx context.Context) (interface{}, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 5*time.Millisecond)
		return nil, nil
	})
	require.NoError(t, err)
}
