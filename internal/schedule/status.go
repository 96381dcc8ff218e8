package schedule

import "time"

// Status is the stored lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"

	// StatusOverdue is a read-time projection, never stored and never a
	// transition target.
	StatusOverdue Status = "overdue"
)

// Valid reports whether s is a storable status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Forward-only transition graph. Cancellation is reachable from the two
// non-terminal states; nothing leaves a terminal state, and no state may be
// skipped.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

// CanMove reports whether the graph permits from -> to.
func CanMove(from, to Status) bool {
	return transitions[from][to]
}

// Overdue reports whether the task's deadline has passed while it is still
// live. now is an explicit input so the projection is reproducible.
func Overdue(t Task, now time.Time) bool {
	return t.Deadline != nil && !t.Status.Terminal() && now.After(*t.Deadline)
}

// EffectiveStatus is the status shown to readers: the stored status, or
// Overdue for a live task past its deadline.
func EffectiveStatus(t Task, now time.Time) Status {
	if Overdue(t, now) {
		return StatusOverdue
	}
	return t.Status
}
