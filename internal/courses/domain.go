package courses

import (
	"time"

	"github.com/courseboard/courseboard/internal/shared"
)

var (
	// ErrCourseNameRequired rejects creation with a blank name.
	ErrCourseNameRequired = shared.Validation("course name required")
	// ErrCourseNameTaken rejects a name collision on create or rename.
	ErrCourseNameTaken = shared.Validation("course name already exists")
)

// Course represents a course that users hold roles in.
type Course struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
