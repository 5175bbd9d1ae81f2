// Package enrollment is the assignment ledger: the binding of a user to a
// role within a course. A user holds at most one role per course; that
// invariant is owned by the storage-level unique constraint on
// (user_id, course_id), not by lookup logic.
package enrollment

import "github.com/courseboard/courseboard/internal/shared"

var (
	// ErrUserNotFound rejects a set-role for an unknown username.
	ErrUserNotFound = shared.NotFound("user not found")
	// ErrCourseNotFound surfaces a dangling course reference.
	ErrCourseNotFound = shared.NotFound("course not found")
	// ErrRoleNotFound surfaces a dangling role reference.
	ErrRoleNotFound = shared.NotFound("role not found")
	// ErrDuplicatePair is the storage constraint violation raised when two
	// writers race to create the same (user, course) pair.
	ErrDuplicatePair = shared.Integrity("user already holds a role in this course")
)

// Assignment records what role a user plays in a course.
type Assignment struct {
	ID       int64
	UserID   int64
	CourseID int64
	RoleID   int64
}

// RosterEntry is one user in a per-course, per-role listing.
type RosterEntry struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Roster is the per-course listing split by the three default roles.
type Roster struct {
	Teachers []RosterEntry `json:"teachers"`
	TAs      []RosterEntry `json:"tas"`
	Students []RosterEntry `json:"students"`
}

// CourseRole is one row of a user's course/role listing, joined with the
// display names.
type CourseRole struct {
	CourseID   int64  `json:"course_id"`
	CourseName string `json:"course_name"`
	RoleID     int64  `json:"role_id"`
	RoleName   string `json:"role_name"`
}

// SetRoleOutcome reports what a SetRole call did.
type SetRoleOutcome string

const (
	// OutcomeCreated means a new assignment row was inserted.
	OutcomeCreated SetRoleOutcome = "created"
	// OutcomeUpdated means the existing row's role was changed in place.
	OutcomeUpdated SetRoleOutcome = "updated"
	// OutcomeUnchanged means the pair already held the requested role.
	OutcomeUnchanged SetRoleOutcome = "unchanged"
)
