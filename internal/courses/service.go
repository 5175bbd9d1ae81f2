package courses

import (
	"context"
	"strings"
)

// Service handles course-catalog business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a new course.
func (s *Service) Create(ctx context.Context, name string) (*Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCourseNameRequired
	}
	return s.repo.Create(ctx, name)
}

// Rename updates a course name in place, rejecting collisions.
func (s *Service) Rename(ctx context.Context, id int64, name string) (*Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCourseNameRequired
	}
	return s.repo.Rename(ctx, id, name)
}

// Delete removes a course together with its assignments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCascade(ctx, id)
}

// Get fetches a single course.
func (s *Service) Get(ctx context.Context, id int64) (*Course, error) {
	return s.repo.Get(ctx, id)
}

// List returns all courses ordered by id.
func (s *Service) List(ctx context.Context) ([]Course, error) {
	return s.repo.List(ctx)
}
