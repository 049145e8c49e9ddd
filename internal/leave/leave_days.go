package leave

import (
	"math"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
)

var dateLayouts = []string{time.DateOnly, time.RFC3339}

// CalculateDays counts calendar days between start and end, both inclusive.
// Partial days round up.
func CalculateDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, leaveerrors.ErrInvalidDateRange
	}
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1, nil
}

// parseDate reduces v to the calendar date written in it, as midnight UTC.
// Time of day and offset are dropped so "2026-01-01T00:30:00+01:00" stays
// 2026-01-01 and is stored as that day by the date column.
func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, leaveerrors.ErrInvalidDateFormat
}
