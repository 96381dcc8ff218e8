package directory

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable wraps transport or storage failures talking to the
	// directory upstream. Callers must treat it as retryable, never as
	// "not a member".
	ErrUnavailable = errors.New("directory: upstream unavailable")
)

// Role classifies a directory account.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller as asserted by the upstream layer.
// The core trusts it and never re-derives the role.
type Identity struct {
	ID   int64
	Role Role
}

// Gateway resolves the organizational hierarchy: user to class, class to
// roster, and the org-wide student population.
//
// A class that no longer exists resolves to an empty roster and IsInClass
// false; only infrastructure failures surface as errors.
type Gateway interface {
	GetClassRoster(ctx context.Context, classID int64) ([]int64, error)
	IsInClass(ctx context.Context, userID, classID int64) (bool, error)
	ListStudents(ctx context.Context) ([]int64, error)
}
