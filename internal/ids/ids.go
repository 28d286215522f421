package ids

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewMessageID generates a time-ordered UUID v7 string for a new message.
func NewMessageID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewULID returns a lexically sortable unique id.
func NewULID() string {
	return ulid.Make().String()
}
