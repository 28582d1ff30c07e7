package errors

import (
	"fmt"
	"strings"
	"unicode"
)

// Issue is a single validation failure. Subject names the offending item
// (for example "edge e-1" or "node a"), Message says what is wrong with it.
type Issue struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in a graph snapshot so that
// callers can report all offending nodes and edges at once.
type ValidationError struct {
	Issues []Issue
}

// Error formats the validation error as a semicolon-separated list of issues.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Subject + ": " + is.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records an issue.
func (e *ValidationError) Add(subject, format string, args ...any) {
	e.Issues = append(e.Issues, Issue{Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// HasIssues reports whether any issue was recorded.
func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// Err returns e if it holds issues, nil otherwise.
func (e *ValidationError) Err() error {
	if e.HasIssues() {
		return e
	}
	return nil
}

// maxIDLength bounds node and edge identifiers.
const maxIDLength = 256

// ValidateID validates a node or edge identifier.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s ID cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s ID too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s ID contains invalid control characters", kind)
		}
	}

	return nil
}

// ValidatePercent validates a 0-100 progress value.
func ValidatePercent(v int) error {
	if v < 0 || v > 100 {
		return New(ErrCodeInvalidInput, "progress must be between 0 and 100, got %d", v)
	}
	return nil
}
