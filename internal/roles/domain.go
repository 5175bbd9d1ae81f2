package roles

import (
	"time"

	"github.com/courseboard/courseboard/internal/shared"
)

// The three seeded roles. They are referenced by id across the system and
// cannot be deleted.
const (
	TeacherID int64 = 1
	TAID      int64 = 2
	StudentID int64 = 3
)

// IsProtected reports whether the role is one of the seeded defaults.
func IsProtected(id int64) bool {
	return id == TeacherID || id == TAID || id == StudentID
}

var (
	// ErrRoleNameRequired rejects creation with a blank name.
	ErrRoleNameRequired = shared.Validation("role name required")
	// ErrRoleNameTaken rejects creation of a duplicate role name.
	ErrRoleNameTaken = shared.Validation("role name already exists")
	// ErrProtectedRole rejects deletion of a seeded default role.
	ErrProtectedRole = shared.Authorization("default roles cannot be deleted")
	// ErrRoleInUse rejects deletion of a role still held in some course;
	// the assignments must be reassigned first.
	ErrRoleInUse = shared.Integrity("role is still assigned in one or more courses")
)

// Role represents a role a user can hold within a course.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
