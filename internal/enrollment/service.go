package enrollment

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/courseboard/courseboard/internal/identity"
	"github.com/courseboard/courseboard/internal/roles"
	"github.com/courseboard/courseboard/internal/shared"
)

// UserDirectory resolves usernames for the set-role path.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*identity.User, error)
}

// Service handles assignment-ledger business rules.
type Service struct {
	repo  Repository
	users UserDirectory
}

// NewService builds a Service instance.
func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// SetRole binds username to roleID within courseID. An existing binding
// for the pair is updated in place; binding the role it already holds is
// a no-op. A concurrent insert race is resolved by retrying once, which
// lands on the update path against the winner's row.
func (s *Service) SetRole(ctx context.Context, username string, courseID, roleID int64) (SetRoleOutcome, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	outcome, err := s.setRoleOnce(ctx, user.ID, courseID, roleID)
	if errors.Is(err, ErrDuplicatePair) {
		outcome, err = s.setRoleOnce(ctx, user.ID, courseID, roleID)
	}
	return outcome, err
}

func (s *Service) setRoleOnce(ctx context.Context, userID, courseID, roleID int64) (SetRoleOutcome, error) {
	var outcome SetRoleOutcome
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.Get(ctx, userID, courseID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing == nil {
			if _, err := tx.Insert(ctx, userID, courseID, roleID); err != nil {
				return err
			}
			outcome = OutcomeCreated
			return nil
		}
		if existing.RoleID == roleID {
			outcome = OutcomeUnchanged
			return nil
		}
		if err := tx.UpdateRole(ctx, existing.ID, roleID); err != nil {
			return err
		}
		outcome = OutcomeUpdated
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// RemoveFromCourse deletes the assignment for the pair; removing an
// absent pair succeeds.
func (s *Service) RemoveFromCourse(ctx context.Context, userID, courseID int64) error {
	return s.repo.Delete(ctx, userID, courseID)
}

// ListByCourseAndRole lists the users holding a role in a course.
func (s *Service) ListByCourseAndRole(ctx context.Context, courseID, roleID int64) ([]RosterEntry, error) {
	return s.repo.ListByCourseAndRole(ctx, courseID, roleID)
}

// Roster fetches the course roster split across the three default roles.
// The three queries are independent, so they run concurrently.
func (s *Service) Roster(ctx context.Context, courseID int64) (*Roster, error) {
	var roster Roster
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.repo.ListByCourseAndRole(ctx, courseID, roles.TeacherID)
		roster.Teachers = list
		return err
	})
	g.Go(func() error {
		list, err := s.repo.ListByCourseAndRole(ctx, courseID, roles.TAID)
		roster.TAs = list
		return err
	})
	g.Go(func() error {
		list, err := s.repo.ListByCourseAndRole(ctx, courseID, roles.StudentID)
		roster.Students = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// ListByUser returns every course/role the user holds.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]CourseRole, error) {
	return s.repo.ListByUser(ctx, userID)
}

// CountDangling exposes the ledger integrity count for the background scan.
func (s *Service) CountDangling(ctx context.Context) (int64, error) {
	return s.repo.CountDangling(ctx)
}
