package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tms/domain/company"
	"tms/domain/shared"
	"tms/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	pending   []po.OutboxRecord
	published []string
	failed    map[string]string
	rejected  map[string]string
	registry  *shared.EventRegistry
}

func newFakeStore() *fakeStore {
	registry := shared.NewEventRegistry()
	company.RegisterEvents(registry)
	return &fakeStore{
		failed:   make(map[string]string),
		rejected: make(map[string]string),
		registry: registry,
	}
}

func (s *fakeStore) add(t *testing.T, event shared.DomainEvent) po.OutboxRecord {
	t.Helper()
	record, err := po.FromDomainEvent(event, s.registry)
	require.NoError(t, err)
	s.pending = append(s.pending, *record)
	return *record
}

func (s *fakeStore) addPoison(id string) {
	s.pending = append(s.pending, po.OutboxRecord{
		ID:        id,
		EventType: "UnknownEvent",
		Content:   "{}",
		Status:    po.StatusPending,
	})
}

func (s *fakeStore) FetchPending(ctx context.Context, batchSize int) ([]po.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > batchSize {
		batch := s.pending[:batchSize]
		s.pending = s.pending[batchSize:]
		return batch, nil
	}
	batch := s.pending
	s.pending = nil
	return batch, nil
}

func (s *fakeStore) MarkPublished(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = cause
	return nil
}

func (s *fakeStore) MarkRejected(ctx context.Context, id string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[id] = cause
	return nil
}

func (s *fakeStore) Registry() *shared.EventRegistry { return s.registry }
func (s *fakeStore) Table() string                   { return "company_outbox" }

// fakePublisher settles correlations according to a per-record verdict
type fakePublisher struct {
	tracker  *Tracker
	verdicts map[string]error
	syncErr  error
}

func (p *fakePublisher) Publish(ctx context.Context, event shared.DomainEvent, correlation *Correlation) error {
	if p.syncErr != nil {
		return p.syncErr
	}
	// Simulate the broker confirming out of band
	go p.tracker.Settle(correlation.ID(), p.verdicts[correlation.ID()])
	return nil
}

func newDispatcherFixture(t *testing.T) (*fakeStore, *fakePublisher, *Dispatcher, *Tracker) {
	t.Helper()
	store := newFakeStore()
	tracker := NewTracker(time.Minute)
	publisher := &fakePublisher{tracker: tracker, verdicts: make(map[string]error)}
	dispatcher, err := NewDispatcher(store, publisher, tracker, time.Second, 10)
	require.NoError(t, err)
	return store, publisher, dispatcher, tracker
}

func testEvent() shared.DomainEvent {
	return company.NewCompanyCreated(uuid.New(), "Acme Logistics", "12345678000195")
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestDispatcherMarksAckedRecordsPublished(t *testing.T) {
	store, _, dispatcher, _ := newDispatcherFixture(t)
	first := store.add(t, testEvent())
	second := store.add(t, testEvent())

	require.NoError(t, dispatcher.ProcessBatch(context.Background()))

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.published) == 2
	})
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.ElementsMatch(t, []string{first.ID, second.ID}, store.published)
	assert.Empty(t, store.failed)
}

func TestDispatcherReturnsNackedRecordToPending(t *testing.T) {
	store, publisher, dispatcher, _ := newDispatcherFixture(t)
	first := store.add(t, testEvent())
	nacked := store.add(t, testEvent())
	second := store.add(t, testEvent())
	publisher.verdicts[nacked.ID] = errors.New("partition leader unavailable")

	require.NoError(t, dispatcher.ProcessBatch(context.Background()))

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.published) == 2 && len(store.failed) == 1
	})
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.ElementsMatch(t, []string{first.ID, second.ID}, store.published, "exactly the acked records reach the terminal state")
	assert.Contains(t, store.failed[nacked.ID], "partition leader unavailable")
	assert.Empty(t, store.rejected)
}

func TestDispatcherRejectsPoisonRecords(t *testing.T) {
	store, _, dispatcher, _ := newDispatcherFixture(t)
	store.addPoison("poison-1")
	healthy := store.add(t, testEvent())

	require.NoError(t, dispatcher.ProcessBatch(context.Background()))

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.published) == 1 && len(store.rejected) == 1
	})
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []string{healthy.ID}, store.published, "one poison record must not block the batch")
	assert.Contains(t, store.rejected["poison-1"], "unknown event type")
}

func TestDispatcherSettlesSynchronousRefusalAsFailure(t *testing.T) {
	store, publisher, dispatcher, _ := newDispatcherFixture(t)
	record := store.add(t, testEvent())
	publisher.syncErr = errors.New("writer closed")

	require.NoError(t, dispatcher.ProcessBatch(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Contains(t, store.failed[record.ID], "writer closed")
	assert.Empty(t, store.published)
}

func TestDispatcherSweepFailsTimedOutPublishes(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(time.Nanosecond)
	// Publisher that never settles: the broker ack is lost
	publisher := &fakePublisher{tracker: NewTracker(time.Minute), verdicts: map[string]error{}}
	dispatcher, err := NewDispatcher(store, publisher, tracker, time.Second, 10)
	require.NoError(t, err)

	record := store.add(t, testEvent())
	require.NoError(t, dispatcher.ProcessBatch(context.Background()))
	require.Equal(t, 1, tracker.InFlight())

	time.Sleep(time.Millisecond)
	require.NoError(t, dispatcher.ProcessBatch(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Contains(t, store.failed, record.ID)
	assert.Contains(t, store.failed[record.ID], "timed out")
}
