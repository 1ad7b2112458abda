package shared

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRouter Destination exchange/topic for integration events
const DefaultRouter = "tms.events"

// DomainEvent Immutable record of something that happened in the domain.
// Identity is the event id; Router/RoutingKey carry the destination binding
// used by the broker gateway. Implementations must not expose mutators.
type DomainEvent interface {
	EventID() uuid.UUID
	EventName() string
	AggregateID() string
	OccurredOn() time.Time
	Router() string
	RoutingKey() string
}

// BaseEvent Embeddable identity for domain events.
// The id is a time-ordered UUID (v7) assigned once at creation.
type BaseEvent struct {
	ID        uuid.UUID `json:"event_id"`
	Timestamp time.Time `json:"occurred_on"`
}

// NewBaseEvent Create event identity at the moment the fact occurs
func NewBaseEvent() BaseEvent {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; fall back to v4
		id = uuid.New()
	}
	return BaseEvent{
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// EventID Event identity, immutable once assigned
func (e BaseEvent) EventID() uuid.UUID { return e.ID }

// OccurredOn When the fact happened
func (e BaseEvent) OccurredOn() time.Time { return e.Timestamp }

// Router Default destination; events override to target another binding
func (e BaseEvent) Router() string { return DefaultRouter }

// RoutingKeyFor Routing key convention for integration events:
// integration.<module>.<EventName>
func RoutingKeyFor(module, eventName string) string {
	return "integration." + module + "." + eventName
}

// ValidateEvent Check the minimal contract every publishable event satisfies
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.EventID() == uuid.Nil {
		return fmt.Errorf("event id cannot be empty")
	}
	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if event.AggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}
	return nil
}

// EventFactory Produces an empty event of a concrete type for decoding
type EventFactory func() DomainEvent

// EventRegistry Maps event type discriminators to decode factories.
// The outbox dispatcher uses it to turn a persisted record back into the
// exact event shape identified by its type column.
type EventRegistry struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

// NewEventRegistry Create an empty registry
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{factories: make(map[string]EventFactory)}
}

// Register Bind an event type name to its factory.
// Registration happens once at startup; later registrations for the same
// name win.
func (r *EventRegistry) Register(eventName string, factory EventFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[eventName] = factory
}

// Decode Deserialize a payload into the event type registered under eventName.
// Unknown types and malformed payloads both surface as ErrSerialization so
// callers can treat them as poison records.
func (r *EventRegistry) Decode(eventName string, payload []byte) (DomainEvent, error) {
	r.mu.RLock()
	factory, ok := r.factories[eventName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrSerialization, eventName)
	}

	event := factory()
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("%w: decoding %q: %v", ErrSerialization, eventName, err)
	}
	return event, nil
}

// Encode Serialize an event for the outbox content column
func (r *EventRegistry) Encode(event DomainEvent) ([]byte, error) {
	return EncodeEvent(event)
}

// EncodeEvent Serialize an event to its wire payload
func EncodeEvent(event DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %v", ErrSerialization, event.EventName(), err)
	}
	return data, nil
}
