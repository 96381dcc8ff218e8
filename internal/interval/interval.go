package interval

import (
	"errors"
	"time"
)

var (
	ErrInvalidInterval = errors.New("interval: start must precede end")
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate enforces the start < end invariant.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return ErrInvalidInterval
	}
	return nil
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap: [9:00,10:00) and [10:00,11:00) are compatible.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Committed is a time range already reserved for a participant, derived from
// a calendar event or one of its recurrence occurrences.
type Committed struct {
	Interval
	EventID string
}
