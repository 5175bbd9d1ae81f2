package roles

import (
	"context"
	"strings"
)

// Service handles role-catalog business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a new role.
func (s *Service) Create(ctx context.Context, name string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}
	return s.repo.Create(ctx, name)
}

// Delete removes a role. The seeded defaults are rejected before the
// request reaches storage; a role still held in some course is rejected
// by the reference check.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if IsProtected(id) {
		return ErrProtectedRole
	}
	return s.repo.DeleteUnreferenced(ctx, id)
}

// Get fetches a single role.
func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.Get(ctx, id)
}

// List returns all roles ordered by id.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}
