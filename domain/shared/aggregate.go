package shared

// AggregateRoot Entry point of an aggregate.
// Aggregates record domain events as they mutate; the unit of work pulls the
// recorded events after a successful mutation and appends them to the outbox
// inside the same transaction.
type AggregateRoot interface {
	// ID Globally unique identity of the aggregate
	ID() string

	// Version Current version, used for optimistic concurrency control
	Version() int

	// PullEvents Return and clear the recorded domain events
	PullEvents() []DomainEvent
}

// EventRecorder Embeddable event collection for aggregate roots
type EventRecorder struct {
	events []DomainEvent
}

// Record Append a domain event to the pending set
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// PullEvents Return and clear the pending events
func (r *EventRecorder) PullEvents() []DomainEvent {
	events := r.events
	r.events = nil
	return events
}

// Entity Identity-bearing domain object; equality is by ID
type Entity interface {
	ID() string
}
