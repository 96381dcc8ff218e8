package recurrence

import (
	"fmt"

	"github.com/teambition/rrule-go"

	"campusplan.org/internal/interval"
)

// Expand materializes every occurrence of the series anchored at the given
// interval. Occurrence k starts at anchor + k*Interval pattern-units and
// keeps the anchor's duration. The sequence is a pure function of its
// inputs: re-expanding the same spec yields the same occurrences, so
// conflict checking and persistence never diverge.
//
// Month-end anchors follow RFC 5545 semantics: a monthly series anchored on
// the 29th-31st skips months lacking that day.
func Expand(anchor interval.Interval, spec Spec) ([]interval.Interval, error) {
	if err := anchor.Validate(); err != nil {
		return nil, err
	}
	if err := spec.Validate(anchor.Start); err != nil {
		return nil, err
	}

	until := anchor.Start.AddDate(maxSpanYears, 0, 0)
	if spec.EndDate != nil && spec.EndDate.Before(until) {
		until = *spec.EndDate
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     frequency(spec.Pattern),
		Interval: spec.Interval,
		Dtstart:  anchor.Start,
		Until:    until,
	})
	if err != nil {
		return nil, fmt.Errorf("recurrence: build rule: %w", err)
	}

	duration := anchor.Duration()
	starts := rule.All()
	out := make([]interval.Interval, 0, len(starts))
	for _, start := range starts {
		out = append(out, interval.Interval{Start: start, End: start.Add(duration)})
	}
	return out, nil
}
