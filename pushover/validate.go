package pushover

import (
	"fmt"
	"net/url"
)

// ValidationError reports a message field that failed a constraint before
// any network I/O was attempted.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("pushover: invalid %s: %s", e.Field, e.Constraint)
}

// Validate checks all field constraints. It returns the first failing field
// as a *ValidationError, or nil when the message is sendable. No side effects.
func (m Message) Validate() error {
	if m.Message == "" {
		return &ValidationError{Field: "message", Constraint: "required and must be non-empty"}
	}
	if m.Priority != nil {
		if p := *m.Priority; p < PriorityLowest || p > PriorityEmergency {
			return &ValidationError{
				Field:      "priority",
				Constraint: fmt.Sprintf("must be between %d and %d, got %s", PriorityLowest, PriorityEmergency, formatDecimal(p)),
			}
		}
	}
	if m.URL != "" {
		parsed, err := url.Parse(m.URL)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return &ValidationError{Field: "url", Constraint: "must be a well-formed absolute URL"}
		}
	}
	if m.Retry != nil && *m.Retry < minRetrySeconds {
		return &ValidationError{
			Field:      "retry",
			Constraint: fmt.Sprintf("must be at least %d seconds", minRetrySeconds),
		}
	}
	if m.Expire != nil && (*m.Expire <= 0 || *m.Expire > maxExpireSeconds) {
		return &ValidationError{
			Field:      "expire",
			Constraint: fmt.Sprintf("must be between 1 and %d seconds", maxExpireSeconds),
		}
	}
	return nil
}

// Validate checks that both credential halves are present.
func (c Credentials) Validate() error {
	if c.Token == "" {
		return &ValidationError{Field: "token", Constraint: "application token is required"}
	}
	if c.User == "" {
		return &ValidationError{Field: "user", Constraint: "user key is required"}
	}
	return nil
}
