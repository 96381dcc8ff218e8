package interval

import (
	"context"
	"errors"
	"fmt"

	"campusplan.org/internal/directory"
)

// Detector tests candidate intervals against a participant's committed
// schedule. Conflicts are strictly per-participant: a candidate never
// collides with another participant's commitments.
type Detector struct {
	store Store
}

// NewDetector constructs a Detector.
func NewDetector(store Store) (*Detector, error) {
	if store == nil {
		return nil, errors.New("interval: store is required")
	}
	return &Detector{store: store}, nil
}

// FindConflicts returns every committed interval of the participant that
// overlaps the candidate, in committed order. A store failure propagates;
// it is never reported as "no conflict".
func (d *Detector) FindConflicts(ctx context.Context, participant directory.Identity, candidate Interval) ([]Committed, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	committed, err := d.store.GetCommitted(ctx, participant)
	if err != nil {
		return nil, fmt.Errorf("committed intervals for %d/%s: %w", participant.ID, participant.Role, err)
	}
	var out []Committed
	for _, c := range committed {
		if candidate.Overlaps(c.Interval) {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindConflictsBatch tests many candidates against one snapshot of the
// participant's committed schedule, fetched once. The result is indexed like
// candidates; entries without conflicts are nil.
func (d *Detector) FindConflictsBatch(ctx context.Context, participant directory.Identity, candidates []Interval) ([][]Committed, error) {
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	committed, err := d.store.GetCommitted(ctx, participant)
	if err != nil {
		return nil, fmt.Errorf("committed intervals for %d/%s: %w", participant.ID, participant.Role, err)
	}
	out := make([][]Committed, len(candidates))
	for i, candidate := range candidates {
		for _, c := range committed {
			if candidate.Overlaps(c.Interval) {
				out[i] = append(out[i], c)
			}
		}
	}
	return out, nil
}

// HasConflict reports whether any committed interval overlaps the candidate.
func (d *Detector) HasConflict(ctx context.Context, participant directory.Identity, candidate Interval) (bool, error) {
	if err := candidate.Validate(); err != nil {
		return false, err
	}
	committed, err := d.store.GetCommitted(ctx, participant)
	if err != nil {
		return false, fmt.Errorf("committed intervals for %d/%s: %w", participant.ID, participant.Role, err)
	}
	for _, c := range committed {
		if candidate.Overlaps(c.Interval) {
			return true, nil
		}
	}
	return false, nil
}
