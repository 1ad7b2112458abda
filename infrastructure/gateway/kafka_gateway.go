package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tms/domain/shared"
	"tms/infrastructure/outbox"
	"tms/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrPublish The broker refused or failed the publish
var ErrPublish = errors.New("broker publish failed")

// KafkaGateway Publishes integration events to Kafka asynchronously.
// WriteMessages enqueues and returns; the writer's Completion callback
// reports the broker verdict later, and the correlation carried in
// WriterData routes that verdict back to the outbox record.
type KafkaGateway struct {
	writer       *kafka.Writer
	tracker      *outbox.Tracker
	defaultTopic string
}

// NewKafkaGateway Create a gateway over the given brokers.
// defaultTopic is the event router exchange used when an event does not
// name its own; each message's topic comes from the event's Router(), so
// events bound to another destination land there. Messages are keyed by
// aggregate id so one aggregate's events stay ordered within a partition.
func NewKafkaGateway(brokers []string, defaultTopic string, writeTimeout time.Duration, maxAttempts int, tracker *outbox.Tracker) (*KafkaGateway, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if defaultTopic == "" {
		return nil, fmt.Errorf("default topic is required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("correlation tracker is required")
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	gateway := &KafkaGateway{tracker: tracker, defaultTopic: defaultTopic}
	gateway.writer = &kafka.Writer{
		// Topic stays unset on the writer: each message carries its own,
		// resolved from the event's Router()
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		WriteTimeout: writeTimeout,
		MaxAttempts:  maxAttempts,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion:   gateway.onCompletion,
	}
	return gateway, nil
}

// Publish Enqueue the event for asynchronous delivery.
// An error here is a synchronous refusal (closed writer, full queue); the
// normal outcome arrives later through the completion callback.
func (g *KafkaGateway) Publish(ctx context.Context, event shared.DomainEvent, correlation *outbox.Correlation) error {
	message, err := g.newMessage(event, correlation)
	if err != nil {
		return err
	}

	if err := g.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("%w: enqueueing %s: %v", ErrPublish, event.EventName(), err)
	}
	return nil
}

// newMessage Build the wire message for one event.
// The topic is the event's destination binding; only an event that names
// none falls back to the gateway default.
func (g *KafkaGateway) newMessage(event shared.DomainEvent, correlation *outbox.Correlation) (kafka.Message, error) {
	payload, err := shared.EncodeEvent(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: encoding %s: %v", ErrPublish, event.EventName(), err)
	}

	topic := event.Router()
	if topic == "" {
		topic = g.defaultTopic
	}

	return kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID().String())},
			{Key: "event_type", Value: []byte(event.EventName())},
			{Key: "routing_key", Value: []byte(event.RoutingKey())},
			{Key: "occurred_on", Value: []byte(event.OccurredOn().UTC().Format(time.RFC3339Nano))},
		},
		WriterData: correlation,
	}, nil
}

// onCompletion Broker verdict for previously enqueued messages.
// Runs on the writer's goroutine; settles each message's correlation
// exactly once through the tracker.
func (g *KafkaGateway) onCompletion(messages []kafka.Message, err error) {
	for _, message := range messages {
		correlation, ok := message.WriterData.(*outbox.Correlation)
		if !ok || correlation == nil {
			logger.Error("Kafka completion without correlation",
				zap.String("key", string(message.Key)),
			)
			continue
		}
		if err != nil {
			g.tracker.Settle(correlation.ID(), fmt.Errorf("%w: %v", ErrPublish, err))
		} else {
			g.tracker.Settle(correlation.ID(), nil)
		}
	}
}

// Close Flush in-flight messages and release the writer
func (g *KafkaGateway) Close() error {
	return g.writer.Close()
}

var _ outbox.Publisher = (*KafkaGateway)(nil)
