package directory

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Gateway with in-process concurrency safety.
// NOTE: intended for tests, smoke runs and local development; production
// deployments use the Postgres-backed gateway in internal/store/pg.
type InMemory struct {
	mu       sync.RWMutex
	students map[int64]struct{}
	classes  map[int64]map[int64]struct{} // classID -> enrolled student ids
}

// NewInMemory creates an empty directory.
func NewInMemory() *InMemory {
	return &InMemory{
		students: make(map[int64]struct{}),
		classes:  make(map[int64]map[int64]struct{}),
	}
}

// AddStudent registers a student in the organization.
func (g *InMemory) AddStudent(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.students[id] = struct{}{}
}

// AddClass registers a class, replacing any previous roster.
func (g *InMemory) AddClass(classID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.classes[classID] = make(map[int64]struct{})
}

// RemoveClass drops a class entirely; subsequent roster lookups resolve empty.
func (g *InMemory) RemoveClass(classID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.classes, classID)
}

// Enroll adds a student to a class roster, creating both as needed.
func (g *InMemory) Enroll(classID, studentID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.students[studentID] = struct{}{}
	roster, ok := g.classes[classID]
	if !ok {
		roster = make(map[int64]struct{})
		g.classes[classID] = roster
	}
	roster[studentID] = struct{}{}
}

// Withdraw removes a student from a class roster.
func (g *InMemory) Withdraw(classID, studentID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if roster, ok := g.classes[classID]; ok {
		delete(roster, studentID)
	}
}

func (g *InMemory) GetClassRoster(ctx context.Context, classID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	roster, ok := g.classes[classID]
	if !ok {
		return nil, nil
	}
	out := make([]int64, 0, len(roster))
	for id := range roster {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (g *InMemory) IsInClass(ctx context.Context, userID, classID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	roster, ok := g.classes[classID]
	if !ok {
		return false, nil
	}
	_, enrolled := roster[userID]
	return enrolled, nil
}

func (g *InMemory) ListStudents(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]int64, 0, len(g.students))
	for id := range g.students {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
