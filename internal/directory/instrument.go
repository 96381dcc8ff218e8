package directory

import (
	"context"

	"campusplan.org/internal/obs"
)

// Instrumented wraps a Gateway and counts every upstream lookup. Directory
// lookups are the most expensive step of an authorization decision, so their
// volume is worth watching.
type Instrumented struct {
	next Gateway
}

// NewInstrumented builds the wrapper.
func NewInstrumented(next Gateway) *Instrumented {
	return &Instrumented{next: next}
}

func (g *Instrumented) GetClassRoster(ctx context.Context, classID int64) ([]int64, error) {
	roster, err := g.next.GetClassRoster(ctx, classID)
	obs.RecordDirectoryLookup("get_class_roster", err)
	return roster, err
}

func (g *Instrumented) IsInClass(ctx context.Context, userID, classID int64) (bool, error) {
	in, err := g.next.IsInClass(ctx, userID, classID)
	obs.RecordDirectoryLookup("is_in_class", err)
	return in, err
}

func (g *Instrumented) ListStudents(ctx context.Context) ([]int64, error) {
	students, err := g.next.ListStudents(ctx)
	obs.RecordDirectoryLookup("list_students", err)
	return students, err
}
