package outbox

import (
	"errors"
	"sync"
	"time"
)

// ErrAckTimeout The broker never confirmed the publish within the window
var ErrAckTimeout = errors.New("broker ack timed out")

// Correlation Ties one in-flight broker publish back to its outbox record.
// The broker confirms asynchronously; whichever of ack, nack or timeout
// arrives first settles the correlation, and later signals are ignored.
type Correlation struct {
	id        string
	metadata  map[string]string
	settle    sync.Once
	onSuccess func()
	onFailure func(error)
}

// NewCorrelation Create a correlation for one outbox record
func NewCorrelation(id string, onSuccess func(), onFailure func(error)) *Correlation {
	return &Correlation{
		id:        id,
		metadata:  make(map[string]string),
		onSuccess: onSuccess,
		onFailure: onFailure,
	}
}

// ID Outbox record this correlation settles
func (c *Correlation) ID() string { return c.id }

// SetMetadata Attach diagnostic context carried through the broker round-trip
func (c *Correlation) SetMetadata(key, value string) {
	c.metadata[key] = value
}

// Metadata Read back a diagnostic attribute
func (c *Correlation) Metadata(key string) string {
	return c.metadata[key]
}

// HandleAck Settle the correlation exactly once.
// A nil err runs the success callback, anything else the failure callback.
func (c *Correlation) HandleAck(err error) {
	c.settle.Do(func() {
		if err == nil {
			if c.onSuccess != nil {
				c.onSuccess()
			}
			return
		}
		if c.onFailure != nil {
			c.onFailure(err)
		}
	})
}

type trackedCorrelation struct {
	correlation *Correlation
	deadline    time.Time
}

// Tracker Bounds how long a publish may stay unconfirmed.
// Correlations whose deadline passes are settled as failures on the next
// sweep, returning their records to the pending pool; a late broker ack
// then hits the already-settled correlation and is dropped.
type Tracker struct {
	mu       sync.Mutex
	inflight map[string]trackedCorrelation
	timeout  time.Duration
}

// NewTracker Create a tracker with the given ack window
func NewTracker(timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Tracker{
		inflight: make(map[string]trackedCorrelation),
		timeout:  timeout,
	}
}

// Track Register an in-flight correlation
func (t *Tracker) Track(c *Correlation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[c.ID()] = trackedCorrelation{
		correlation: c,
		deadline:    time.Now().Add(t.timeout),
	}
}

// Settle Remove the correlation and settle it with the broker's verdict
func (t *Tracker) Settle(id string, err error) {
	t.mu.Lock()
	tracked, ok := t.inflight[id]
	if ok {
		delete(t.inflight, id)
	}
	t.mu.Unlock()

	if ok {
		tracked.correlation.HandleAck(err)
	}
}

// SweepExpired Fail every correlation whose ack window has passed
func (t *Tracker) SweepExpired(now time.Time) int {
	t.mu.Lock()
	var expired []*Correlation
	for id, tracked := range t.inflight {
		if now.After(tracked.deadline) {
			expired = append(expired, tracked.correlation)
			delete(t.inflight, id)
		}
	}
	t.mu.Unlock()

	for _, c := range expired {
		c.HandleAck(ErrAckTimeout)
	}
	return len(expired)
}

// InFlight Number of unconfirmed publishes
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
