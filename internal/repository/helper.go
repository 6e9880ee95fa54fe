package repository

import (
	"fmt"
	"time"
)

// ParseTime turns a stored date column back into a UTC time.Time. Day-only
// columns are stored as "2006-01-02" and timestamp columns as RFC3339, so
// both layouts are tried in that order.
func ParseTime(str string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", str, err)
	}
	return t.UTC(), nil
}
