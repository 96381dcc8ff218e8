package interval

import (
	"context"
	"sort"
	"sync"

	"campusplan.org/internal/directory"
)

// InMemory implements Store with in-process concurrency safety.
// NOTE: intended for tests and smoke runs; production deployments use the
// Postgres-backed store in internal/store/pg.
type InMemory struct {
	mu        sync.RWMutex
	committed map[directory.Identity][]Committed
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{committed: make(map[directory.Identity][]Committed)}
}

func (s *InMemory) GetCommitted(ctx context.Context, participant directory.Identity) ([]Committed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.committed[participant]
	out := make([]Committed, len(src))
	copy(out, src)
	return out, nil
}

func (s *InMemory) Commit(ctx context.Context, participant directory.Identity, c Committed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.committed[participant], c)
	sort.Slice(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
	s.committed[participant] = list
	return nil
}

func (s *InMemory) Release(ctx context.Context, participant directory.Identity, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.committed[participant]
	kept := src[:0]
	for _, c := range src {
		if c.EventID != eventID {
			kept = append(kept, c)
		}
	}
	s.committed[participant] = kept
	return nil
}
