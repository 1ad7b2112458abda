package outbox

import (
	"context"
	"fmt"
	"time"

	"tms/domain/shared"
	"tms/infrastructure/persistence/mysql/po"
	"tms/pkg/logger"

	"go.uber.org/zap"
)

// Store Read/settle side of one module's outbox table
type Store interface {
	FetchPending(ctx context.Context, batchSize int) ([]po.OutboxRecord, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause string) error
	MarkRejected(ctx context.Context, id string, cause string) error
	Registry() *shared.EventRegistry
	Table() string
}

// Publisher Fire-and-forget broker send; the outcome arrives later through
// the correlation
type Publisher interface {
	Publish(ctx context.Context, event shared.DomainEvent, correlation *Correlation) error
}

const settleTimeout = 10 * time.Second

// Dispatcher Drains one module's outbox table to the broker.
// Each tick sweeps timed-out publishes, claims a batch of pending records
// and fires them asynchronously; broker confirms settle the records out of
// band. Ticks never overlap: the loop runs batches sequentially and the
// ticker drops ticks that arrive while a batch is still in progress.
type Dispatcher struct {
	store        Store
	publisher    Publisher
	tracker      *Tracker
	pollInterval time.Duration
	batchSize    int
}

// NewDispatcher Create a dispatcher for one module's outbox
func NewDispatcher(store Store, publisher Publisher, tracker *Tracker, pollInterval time.Duration, batchSize int) (*Dispatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("outbox store is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("correlation tracker is required")
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Dispatcher{
		store:        store,
		publisher:    publisher,
		tracker:      tracker,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}, nil
}

// Run Poll until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.Info("Outbox dispatcher started",
		zap.String("table", d.store.Table()),
		zap.Duration("poll_interval", d.pollInterval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.ProcessBatch(ctx); err != nil {
				logger.Error("Outbox batch failed",
					zap.String("table", d.store.Table()),
					zap.Error(err),
				)
			}
		}
	}
}

// ProcessBatch One dispatch cycle: sweep, claim, fire.
// A failure on one record never blocks the rest of the batch.
func (d *Dispatcher) ProcessBatch(ctx context.Context) error {
	if expired := d.tracker.SweepExpired(time.Now()); expired > 0 {
		logger.Warn("Publishes timed out waiting for broker ack",
			zap.String("table", d.store.Table()),
			zap.Int("expired", expired),
		)
	}

	records, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for _, record := range records {
		d.dispatch(ctx, record)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, record po.OutboxRecord) {
	event, err := d.store.Registry().Decode(record.EventType, []byte(record.Content))
	if err != nil {
		// Poison record: deserialization will never succeed, park it
		logger.Error("Outbox record rejected",
			zap.String("table", d.store.Table()),
			zap.String("record_id", record.ID),
			zap.String("event_type", record.EventType),
			zap.Error(err),
		)
		if rejectErr := d.store.MarkRejected(ctx, record.ID, err.Error()); rejectErr != nil {
			logger.Error("Failed to mark outbox record rejected",
				zap.String("record_id", record.ID),
				zap.Error(rejectErr),
			)
		}
		return
	}

	correlation := d.newCorrelation(record)
	d.tracker.Track(correlation)

	if err := d.publisher.Publish(ctx, event, correlation); err != nil {
		// Synchronous refusal, settle immediately
		d.tracker.Settle(record.ID, err)
	}
}

// newCorrelation Bind the record's terminal transitions to the broker verdict.
// Callbacks run on the broker client's goroutine after the tick context is
// gone, so they carry their own deadline.
func (d *Dispatcher) newCorrelation(record po.OutboxRecord) *Correlation {
	id := record.ID
	table := d.store.Table()

	correlation := NewCorrelation(id,
		func() {
			ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
			defer cancel()
			if err := d.store.MarkPublished(ctx, id); err != nil {
				logger.Error("Failed to mark outbox record published",
					zap.String("table", table),
					zap.String("record_id", id),
					zap.Error(err),
				)
			}
		},
		func(cause error) {
			ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
			defer cancel()
			logger.Warn("Outbox publish failed, record returned to pending",
				zap.String("table", table),
				zap.String("record_id", id),
				zap.Error(cause),
			)
			if err := d.store.MarkFailed(ctx, id, cause.Error()); err != nil {
				logger.Error("Failed to mark outbox record failed",
					zap.String("table", table),
					zap.String("record_id", id),
					zap.Error(err),
				)
			}
		},
	)
	correlation.SetMetadata("event_type", record.EventType)
	correlation.SetMetadata("aggregate_id", record.AggregateID)
	return correlation
}
