package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID      = fmt.Errorf("invalid UUID format")
	ErrInvalidDate      = fmt.Errorf("invalid date format")
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
	ErrEmptySlice       = fmt.Errorf("slice cannot be empty")
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs validates a slice of UUIDs
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrEmptySlice
	}
	for _, id := range ids {
		if err := ValidateUUID(id); err != nil {
			return err
		}
	}
	return nil
}

// ParseDate parses a date in YYYY-MM-DD format, falling back to RFC 3339.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, value)
	}
	return t, nil
}

// ValidateDateRange checks that start does not come after end.
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: start %s after end %s",
			ErrInvalidDateRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return nil
}
