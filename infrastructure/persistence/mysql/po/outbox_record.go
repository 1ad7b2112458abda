package po

import (
	"fmt"
	"time"

	"tms/domain/shared"
)

// Outbox record status. PENDING records are eligible for dispatch;
// PROCESSING records are claimed by a dispatcher until their lease expires;
// PUBLISHED is terminal on success; REJECTED is terminal for poison records
// that can never be (de)serialized.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusPublished  = "PUBLISHED"
	StatusRejected   = "REJECTED"
)

// OutboxRecord Persisted form of a not-yet-delivered domain event.
// The record id equals the event id; content deserializes back into the
// exact event shape identified by EventType. The table name is set per
// module by the repository, so this struct declares none.
type OutboxRecord struct {
	ID          string     `gorm:"primaryKey;size:36"`
	AggregateID string     `gorm:"size:36;index;not null"`
	EventType   string     `gorm:"size:100;index;not null"`
	Content     string     `gorm:"type:json;not null"`
	Status      string     `gorm:"size:20;default:PENDING;not null;index:idx_status_created"`
	Attempts    int        `gorm:"default:0;not null"`
	LastError   string     `gorm:"size:500"`
	LeasedUntil *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index:idx_status_created"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

// FromDomainEvent Convert a domain event into its outbox record
func FromDomainEvent(event shared.DomainEvent, registry *shared.EventRegistry) (*OutboxRecord, error) {
	if err := shared.ValidateEvent(event); err != nil {
		return nil, fmt.Errorf("invalid domain event: %w", err)
	}

	content, err := registry.Encode(event)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &OutboxRecord{
		ID:          event.EventID().String(),
		AggregateID: event.AggregateID(),
		EventType:   event.EventName(),
		Content:     string(content),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Published Whether the record reached its terminal success state
func (r *OutboxRecord) Published() bool {
	return r.Status == StatusPublished
}
