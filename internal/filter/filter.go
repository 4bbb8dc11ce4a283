// Package filter narrows measurement sets by date range.
//
// Filtering is pure: no side effects, deterministic, and idempotent on
// re-application. The orchestrator applies it once after listing; tests
// apply it repeatedly to verify stability.
package filter

import (
	"time"

	"github.com/bnovate/bactocloud-dl/internal/models"
)

// DateRange is an inclusive timestamp window. Construct it with
// NewDateRange so the bounds are normalized to whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range covering the given days in full: Start is
// normalized to 00:00:00 and End to 23:59:59 (UTC). The date components
// of the inputs are used as-is; any time-of-day is discarded.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{
		Start: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		End:   time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC),
	}
}

// Contains reports whether ts falls within the range, bounds included.
func (r DateRange) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && !ts.After(r.End)
}

// ByDateRange returns the measurements whose timestamp falls within r.
// Measurements with a zero timestamp are excluded; their capture time is
// unknown so they cannot be placed inside any window.
func ByDateRange(measurements []models.Measurement, r DateRange) []models.Measurement {
	filtered := make([]models.Measurement, 0, len(measurements))
	for _, m := range measurements {
		if m.Timestamp.IsZero() {
			continue
		}
		if r.Contains(m.Timestamp) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
