package inbox

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an id is absent from the active collection.
	ErrNotFound = errors.New("message not found")

	// ErrStoreUnavailable wraps any failure to read or write the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validation rules, in the order they are checked.
const (
	RuleRequired      = "required"
	RuleNameLength    = "name_length"
	RuleEmailFormat   = "email_format"
	RuleMessageLength = "message_length"
	RuleStatus        = "status"
)

// ValidationError names the first rule a submission failed.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
