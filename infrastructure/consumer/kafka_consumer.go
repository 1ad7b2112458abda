package consumer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tms/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler Applies one integration event payload.
// Handlers must be idempotent upserts; delivery is at-least-once.
type Handler func(ctx context.Context, payload []byte) error

// Consumer Reads integration events from Kafka for one consumer group.
// Events are routed to handlers by the event_type header; unknown types are
// committed and dropped so one module's new events never stall another
// module's consumer. Offsets are committed only after the handler and the
// idempotency mark succeed.
type Consumer struct {
	reader   *kafka.Reader
	guard    IdempotencyGuard
	handlers map[string]Handler
}

// NewConsumer Create a consumer for the given group and topic
func NewConsumer(brokers []string, groupID, topic string, guard IdempotencyGuard) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if groupID == "" {
		return nil, fmt.Errorf("consumer group id is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: 0, // explicit commits only
	})

	return &Consumer{
		reader:   reader,
		guard:    guard,
		handlers: make(map[string]Handler),
	}, nil
}

// Handle Register the handler for an event type
func (c *Consumer) Handle(eventType string, handler Handler) {
	c.handlers[eventType] = handler
}

// Run Consume until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	logger.Info("Consumer started",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
	)

	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return ctx.Err()
			}
			logger.Error("Fetching message failed", zap.Error(err))
			continue
		}

		if err := c.process(ctx, message); err != nil {
			// Leave the offset uncommitted; the message redelivers
			logger.Error("Processing message failed",
				zap.String("event_id", headerValue(message, "event_id")),
				zap.String("event_type", headerValue(message, "event_type")),
				zap.Error(err),
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			logger.Error("Committing offset failed", zap.Error(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, message kafka.Message) error {
	eventID := headerValue(message, "event_id")
	eventType := headerValue(message, "event_type")

	handler, ok := c.handlers[eventType]
	if !ok {
		logger.Debug("No handler for event type, dropping",
			zap.String("event_type", eventType),
		)
		return nil
	}

	if eventID != "" {
		duplicate, err := c.guard.AlreadyProcessed(ctx, eventID)
		if err != nil {
			return err
		}
		if duplicate {
			logger.Debug("Duplicate event suppressed",
				zap.String("event_id", eventID),
				zap.String("event_type", eventType),
			)
			return nil
		}
	}

	if err := handler(ctx, message.Value); err != nil {
		return err
	}

	if eventID != "" {
		if err := c.guard.MarkProcessed(ctx, eventID); err != nil {
			// The handler already applied; failing here only risks one
			// duplicate application, which handlers tolerate
			logger.Warn("Failed to mark event processed",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func headerValue(message kafka.Message, key string) string {
	for _, header := range message.Headers {
		if header.Key == key {
			return string(header.Value)
		}
	}
	return ""
}

// Close Release the reader and its group membership
func (c *Consumer) Close() error {
	return c.reader.Close()
}
