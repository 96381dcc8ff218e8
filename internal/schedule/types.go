package schedule

import (
	"errors"
	"time"

	"campusplan.org/internal/audience"
	"campusplan.org/internal/directory"
	"campusplan.org/internal/recurrence"
)

var (
	ErrInvalidInput = errors.New("schedule: invalid input")
)

// Task is a work item addressed to one or more audiences. Status moves only
// through the evaluator's transition rules; Overdue is derived at read time
// and never stored.
type Task struct {
	ID          string
	CreatorID   int64
	CreatorRole directory.Role
	Status      Status
	Deadline    *time.Time
	Targets     []audience.TargetSpec
}

// CalendarEvent is a time placement for one or more audiences, standalone or
// linked to a task. Start < End is a hard invariant.
type CalendarEvent struct {
	ID           string
	CreatorID    int64
	CreatorRole  directory.Role
	Start        time.Time
	End          time.Time
	Participants []audience.TargetSpec
	Recurrence   *recurrence.Spec
	TaskID       string
}

// Item is the authorization view shared by tasks and calendar events.
type Item interface {
	Creator() directory.Identity
	Audience() []audience.TargetSpec
}

func (t Task) Creator() directory.Identity {
	return directory.Identity{ID: t.CreatorID, Role: t.CreatorRole}
}

func (t Task) Audience() []audience.TargetSpec { return t.Targets }

func (e CalendarEvent) Creator() directory.Identity {
	return directory.Identity{ID: e.CreatorID, Role: e.CreatorRole}
}

func (e CalendarEvent) Audience() []audience.TargetSpec { return e.Participants }
