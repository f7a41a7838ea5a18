package service

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestValidateWindow(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-1 * time.Hour)
	inOneHour := now.Add(1 * time.Hour)
	inTwoHours := now.Add(2 * time.Hour)

	tests := []struct {
		name        string
		start       *time.Time
		end         *time.Time
		requireBoth bool
		wantErr     error
	}{
		{"valid_window", &inOneHour, &inTwoHours, true, nil},
		{"start_in_past", &past, &inOneHour, true, ErrStartInPast},
		{"end_before_start", &inTwoHours, &inOneHour, true, ErrEndBeforeStart},
		{"missing_end_required", &inOneHour, nil, true, ErrIncompleteWindow},
		{"missing_start_required", nil, &inTwoHours, true, ErrIncompleteWindow},
		{"missing_both_required", nil, nil, true, ErrIncompleteWindow},
		{"partial_allowed", &inOneHour, nil, false, nil},
		{"empty_allowed", nil, nil, false, nil},
		{"past_start_checked_when_partial", &past, nil, false, ErrStartInPast},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validateWindow(test.start, test.end, now, test.requireBoth)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr error
	}{
		{"empty", "", true, nil},
		{"rfc3339", "2026-09-01T10:00:00Z", false, nil},
		{"rfc3339_offset", "2026-09-01T12:00:00+02:00", false, nil},
		{"no_zone", "2026-09-01T10:00:00", false, nil},
		{"no_seconds", "2026-09-01T10:00", false, nil},
		{"garbage", "next tuesday", true, ErrInvalidTimestamp},
		{"date_only", "2026-09-01", true, ErrInvalidTimestamp},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseTimestamp(test.raw)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected error %v, got %v", test.wantErr, err)
			}
			if (got == nil) != test.wantNil {
				t.Errorf("expected nil=%v, got %v", test.wantNil, got)
			}
		})
	}
}

func TestParseTimestamp_NormalizesToUTC(t *testing.T) {
	t.Parallel()

	got, err := parseTimestamp("2026-09-01T12:00:00+02:00")
	if err != nil {
		t.Fatalf("parseTimestamp failed: %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
	if got.Hour() != 10 {
		t.Errorf("expected 10:00 UTC, got %v", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	svc := &UserService{validate: validator.New()}

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"lowercase_passthrough", "a@b.com", "a@b.com", nil},
		{"mixed_case", "A@B.com", "a@b.com", nil},
		{"padded", "  User@Example.COM ", "user@example.com", nil},
		{"empty", "", "", ErrEmailRequired},
		{"no_at", "not-an-email", "", ErrInvalidEmail},
		{"no_domain", "user@", "", ErrInvalidEmail},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := svc.normalizeEmail(test.raw)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected error %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}
