package audience

import (
	"fmt"

	"campusplan.org/internal/directory"
)

// TargetSpec names one audience unit a task or calendar event is addressed
// to. The variant set is closed: a single person, one class, or every
// student in the organization. Membership of an item is the union over all
// specs attached to it.
type TargetSpec interface {
	// Kind returns a stable machine-readable variant name for logging.
	Kind() string

	targetSpec()
}

// DirectUser addresses one specific person.
type DirectUser struct {
	UserID int64
	Role   directory.Role
}

// WholeClass addresses every student currently enrolled in a class.
type WholeClass struct {
	ClassID int64
}

// OrgWide addresses every student in the organization.
type OrgWide struct{}

func (DirectUser) targetSpec() {}
func (WholeClass) targetSpec() {}
func (OrgWide) targetSpec()    {}

func (DirectUser) Kind() string { return "direct_user" }
func (WholeClass) Kind() string { return "whole_class" }
func (OrgWide) Kind() string    { return "org_wide" }

func (s DirectUser) String() string { return fmt.Sprintf("user:%d/%s", s.UserID, s.Role) }
func (s WholeClass) String() string { return fmt.Sprintf("class:%d", s.ClassID) }
func (OrgWide) String() string      { return "org" }
