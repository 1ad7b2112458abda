package persistence

import "errors"

// ErrPersistence Business or outbox write failed.
// Raised inside a transaction it causes the whole transaction to roll back,
// discarding the business mutation together with its outbox record.
var ErrPersistence = errors.New("persistence failure")
