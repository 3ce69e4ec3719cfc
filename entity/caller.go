package entity

import "github.com/google/uuid"

// CallerClass selects the storage profile a request is served from.
type CallerClass string

const (
	CallerGuest      CallerClass = "guest"
	CallerRegistered CallerClass = "registered"
)

func (c CallerClass) IsGuest() bool {
	return c != CallerRegistered
}

// Caller is the identity claim handed over by the caller middleware.
// ID doubles as the caller's container name.
type Caller struct {
	Class CallerClass
	ID    uuid.UUID
}

func (c Caller) Container() string {
	return c.ID.String()
}
