package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors. The handler layer maps these to 400/422 responses.
var (
	ErrEmailRequired    = errors.New("email and password are required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidTimestamp = errors.New("invalid timestamp, use ISO-8601 (YYYY-MM-DDTHH:MM:SS)")
	ErrStartInPast      = errors.New("participation start time cannot be in the past")
	ErrEndBeforeStart   = errors.New("participation end time cannot be earlier than start time")
	ErrIncompleteWindow = errors.New("both participation start and end times are required")
)

// timestampLayouts are accepted participation time formats. Inputs
// without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseTimestamp parses an ISO-8601 participation bound. Returns nil for
// empty input.
func parseTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// validateWindow enforces the participation window invariants: if both
// bounds are present, end must not precede start, and start must not be
// in the past at creation time. With requireBoth set (registration flow)
// a partial window is rejected; otherwise one-bound windows pass.
func validateWindow(start, end *time.Time, now time.Time, requireBoth bool) error {
	if requireBoth && (start == nil || end == nil) {
		return ErrIncompleteWindow
	}

	if start != nil && start.Before(now) {
		return ErrStartInPast
	}

	if start != nil && end != nil && end.Before(*start) {
		return ErrEndBeforeStart
	}

	return nil
}

// normalizeEmail validates the address syntactically and lowercases it.
// Storage and lookups both use the normalized form, so mixed-case logins
// cannot miss.
func (s *UserService) normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrEmailRequired
	}

	if err := s.validate.Var(email, "email"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	return strings.ToLower(email), nil
}
