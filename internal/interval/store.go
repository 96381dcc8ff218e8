package interval

import (
	"context"

	"campusplan.org/internal/directory"
)

// Store reads and records committed intervals per participant. The core only
// reads; Commit and Release exist for the persistence layer that owns event
// lifecycles (and for tests).
type Store interface {
	GetCommitted(ctx context.Context, participant directory.Identity) ([]Committed, error)
	Commit(ctx context.Context, participant directory.Identity, c Committed) error
	Release(ctx context.Context, participant directory.Identity, eventID string) error
}
