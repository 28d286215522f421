package models

// Status is the workflow tag of a contact message.
type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
	StatusSpam    Status = "spam"
)

// Valid reports whether s is one of the known workflow tags.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusSpam:
		return true
	}
	return false
}

// Message represents a contact form submission.
type Message struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Status     Status `json:"status"`
	Read       bool   `json:"read"`
	Date       string `json:"date"`                 // ISO-8601, set at creation
	ArchivedAt string `json:"archivedAt,omitempty"` // only on archived copies
}

// ContactInput is the user-supplied part of a new message.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// StatusUpdate holds the mutable fields of a message. Nil fields are left unchanged.
type StatusUpdate struct {
	Status *Status `json:"status,omitempty"`
	Read   *bool   `json:"read,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u StatusUpdate) Empty() bool {
	return u.Status == nil && u.Read == nil
}
