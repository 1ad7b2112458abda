package outbox

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationSettlesExactlyOnce(t *testing.T) {
	var successes, failures int
	correlation := NewCorrelation("rec-1",
		func() { successes++ },
		func(error) { failures++ },
	)

	correlation.HandleAck(nil)
	correlation.HandleAck(errors.New("late nack"))
	correlation.HandleAck(nil)

	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures, "a settled correlation ignores later verdicts")
}

func TestCorrelationFailureVerdict(t *testing.T) {
	var got error
	correlation := NewCorrelation("rec-1",
		func() { t.Fatal("success callback must not run") },
		func(err error) { got = err },
	)

	cause := errors.New("broker down")
	correlation.HandleAck(cause)
	assert.Equal(t, cause, got)
}

func TestCorrelationConcurrentSettleIsSafe(t *testing.T) {
	var settled int
	correlation := NewCorrelation("rec-1",
		func() { settled++ },
		func(error) { settled++ },
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				correlation.HandleAck(nil)
			} else {
				correlation.HandleAck(errors.New("nack"))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
}

func TestTrackerSettleRemovesCorrelation(t *testing.T) {
	tracker := NewTracker(time.Minute)

	var ok bool
	tracker.Track(NewCorrelation("rec-1", func() { ok = true }, nil))
	require.Equal(t, 1, tracker.InFlight())

	tracker.Settle("rec-1", nil)
	assert.True(t, ok)
	assert.Equal(t, 0, tracker.InFlight())

	// Settling an unknown id is a no-op
	tracker.Settle("rec-1", nil)
	tracker.Settle("rec-ghost", errors.New("nack"))
}

func TestTrackerSweepFailsExpired(t *testing.T) {
	tracker := NewTracker(10 * time.Millisecond)

	var got error
	tracker.Track(NewCorrelation("rec-1",
		func() { t.Fatal("expired correlation must fail") },
		func(err error) { got = err },
	))

	expired := tracker.SweepExpired(time.Now().Add(time.Second))
	assert.Equal(t, 1, expired)
	require.ErrorIs(t, got, ErrAckTimeout)
	assert.Equal(t, 0, tracker.InFlight())

	// A late broker ack after the sweep is dropped by the settle-once guard
	tracker.Settle("rec-1", nil)
}

func TestTrackerSweepKeepsLiveCorrelations(t *testing.T) {
	tracker := NewTracker(time.Minute)
	tracker.Track(NewCorrelation("rec-1", nil, nil))

	expired := tracker.SweepExpired(time.Now())
	assert.Equal(t, 0, expired)
	assert.Equal(t, 1, tracker.InFlight())
}
