package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	ErrInvalidPattern     = errors.New("recurrence: invalid pattern")
	ErrIntervalOutOfRange = errors.New("recurrence: interval out of range")
	ErrSpanTooLong        = errors.New("recurrence: span exceeds limit")
)

// maxSpanYears bounds every series, with or without an explicit end date.
const maxSpanYears = 2

// Pattern is the unit of recurrence stepping.
type Pattern string

const (
	Daily   Pattern = "daily"
	Weekly  Pattern = "weekly"
	Monthly Pattern = "monthly"
	Yearly  Pattern = "yearly"
)

// maxInterval returns the per-pattern interval cap, or false for an unknown
// pattern.
func maxInterval(p Pattern) (int, bool) {
	switch p {
	case Daily:
		return 365, true
	case Weekly:
		return 52, true
	case Monthly:
		return 12, true
	case Yearly:
		return 10, true
	}
	return 0, false
}

func frequency(p Pattern) rrule.Frequency {
	switch p {
	case Daily:
		return rrule.DAILY
	case Weekly:
		return rrule.WEEKLY
	case Monthly:
		return rrule.MONTHLY
	default:
		return rrule.YEARLY
	}
}

// Spec describes a repeating series: every Interval pattern-units starting
// at the anchor, until EndDate or the two-year span cap, whichever is
// earlier.
type Spec struct {
	Pattern  Pattern
	Interval int
	EndDate  *time.Time
}

// Validate checks the spec against the anchor start. All violations are
// reported together in a single aggregated error; nothing is expanded
// partially.
func (s Spec) Validate(anchorStart time.Time) error {
	var errs []error
	limit, known := maxInterval(s.Pattern)
	if !known {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPattern, s.Pattern))
	}
	if known && (s.Interval < 1 || s.Interval > limit) {
		errs = append(errs, fmt.Errorf("%w: %d not in [1,%d] for %s", ErrIntervalOutOfRange, s.Interval, limit, s.Pattern))
	}
	if s.EndDate != nil && s.EndDate.After(anchorStart.AddDate(maxSpanYears, 0, 0)) {
		errs = append(errs, fmt.Errorf("%w: end date %s is more than %d years past the anchor", ErrSpanTooLong, s.EndDate.Format(time.RFC3339), maxSpanYears))
	}
	return errors.Join(errs...)
}
