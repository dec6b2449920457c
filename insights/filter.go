/*
filter.go - Date-range and shift-type filtering

The filter bar on the history and insights screens narrows records
before aggregation. Range semantics: a shift is "in the last N days"
when its date is at most N*24h before now; future-dated shifts always
pass (their day delta is negative).
*/
package insights

import (
	"time"

	"github.com/tiptally/shift-engine/engine"
)

// Range is a relative date window.
type Range string

const (
	RangeWeek  Range = "7d"
	RangeMonth Range = "30d"
	RangeAll   Range = "all"
)

// ParseRange returns the Range for s, defaulting to the 30-day window.
func ParseRange(s string) Range {
	switch Range(s) {
	case RangeWeek, RangeMonth, RangeAll:
		return Range(s)
	default:
		return RangeMonth
	}
}

// InRange reports whether a shift date falls inside the window ending
// at now. Unparseable dates are excluded from bounded windows.
func InRange(date string, r Range, now time.Time) bool {
	if r == RangeAll {
		return true
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	days := now.Sub(d).Hours() / 24
	if r == RangeWeek {
		return days <= 7
	}
	return days <= 30
}

// Filter returns the records inside the window that match shiftType.
// An empty shiftType matches everything.
func Filter(records []engine.ShiftRecord, r Range, shiftType string, now time.Time) []engine.ShiftRecord {
	out := make([]engine.ShiftRecord, 0, len(records))
	for _, rec := range records {
		if !InRange(rec.Date, r, now) {
			continue
		}
		if shiftType != "" && rec.ShiftType != shiftType {
			continue
		}
		out = append(out, rec)
	}
	return out
}
