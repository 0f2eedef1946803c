package validator

import (
	"strings"
)

const (
	maxTitleLen   = 200
	maxMessageLen = 2000
	maxLinkLen    = 500
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any errors
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Add adds a validation error
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// ValidateNotificationContent checks the user-facing fields of an
// announcement before anything is persisted or pushed.
func ValidateNotificationContent(title, message, link string) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(title) == "" {
		errors.Add("title", "is required")
	} else if len(title) > maxTitleLen {
		errors.Add("title", "too long")
	}

	if strings.TrimSpace(message) == "" {
		errors.Add("message", "is required")
	} else if len(message) > maxMessageLen {
		errors.Add("message", "too long")
	}

	if len(link) > maxLinkLen {
		errors.Add("link", "too long")
	}

	return errors
}

// SanitizeString trims whitespace and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
