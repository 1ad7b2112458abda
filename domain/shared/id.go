package shared

import "github.com/google/uuid"

// NewID Generate a time-ordered unique identifier.
// V7 uuids sort by creation time, which keeps outbox insertion order aligned
// with id order.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id
}

// ParseID Parse an identifier from its string form
func ParseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, NewValidationError("id", "id", "invalid identifier: "+value)
	}
	return id, nil
}
