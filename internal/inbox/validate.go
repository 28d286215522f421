package inbox

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/models"
)

const (
	minNameLen    = 2
	maxNameLen    = 100
	minMessageLen = 10
	maxMessageLen = 1000
)

// emailRegex accepts anything shaped like local@domain.tld. No part may hold
// whitespace of any script: \s alone only covers ASCII.
var emailRegex = regexp.MustCompile(`^[^\s\x{0B}\p{Z}\x{FEFF}@]+@[^\s\x{0B}\p{Z}\x{FEFF}@]+\.[^\s\x{0B}\p{Z}\x{FEFF}@]+$`)

// stripAngles removes '<' and '>' characters; tags are not parsed.
var stripAngles = strings.NewReplacer("<", "", ">", "")

// Sanitize trims every field, strips angle brackets from name and message,
// and lower-cases the email.
func Sanitize(in models.ContactInput) models.ContactInput {
	return models.ContactInput{
		Name:    stripAngles.Replace(strings.TrimSpace(in.Name)),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Message: stripAngles.Replace(strings.TrimSpace(in.Message)),
	}
}

// Validate checks a sanitized submission and returns the first failing rule.
func Validate(in models.ContactInput) error {
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return &ValidationError{Rule: RuleRequired, Message: "All fields are required"}
	}
	if n := utf8.RuneCountInString(in.Name); n < minNameLen || n > maxNameLen {
		return &ValidationError{Rule: RuleNameLength, Message: "Name must be between 2 and 100 characters"}
	}
	if !emailRegex.MatchString(in.Email) {
		return &ValidationError{Rule: RuleEmailFormat, Message: "Invalid email format"}
	}
	if n := utf8.RuneCountInString(in.Message); n < minMessageLen || n > maxMessageLen {
		return &ValidationError{Rule: RuleMessageLength, Message: "Message must be between 10 and 1000 characters"}
	}
	return nil
}

func validateUpdate(u models.StatusUpdate) error {
	if u.Status != nil && !u.Status.Valid() {
		return &ValidationError{Rule: RuleStatus, Message: "Invalid status"}
	}
	return nil
}
