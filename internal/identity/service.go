package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/courseboard/courseboard/internal/shared"
)

var (
	// ErrEmptyUsername rejects registration with a blank username.
	ErrEmptyUsername = shared.Validation("username is empty")
	// ErrUsernameTaken rejects registration of an existing username.
	ErrUsernameTaken = shared.Validation("username already taken")
	// ErrBootstrapAdminProtected rejects any mutation of the seed account.
	ErrBootstrapAdminProtected = shared.Authorization("bootstrap administrator account is protected")
)

// Service wraps identity-store business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with the supplied password.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hash password: %w", err)
	}
	return s.repo.Create(ctx, username, string(hash))
}

// AdminCreate creates an account with a random unusable password, for
// administrator-provisioned users whose credentials are issued out of band.
func (s *Service) AdminCreate(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("identity: generate password: %w", err)
	}
	return s.Register(ctx, username, base64.RawURLEncoding.EncodeToString(raw))
}

// Authenticate validates username/password credentials. The failure is
// identical whether the username is unknown or the password is wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// SetPrivilege toggles the superuser flag. The bootstrap administrator is
// refused here regardless of what the boundary guards already checked.
// Setting the privilege an account already holds is a no-op.
func (s *Service) SetPrivilege(ctx context.Context, id int64, privilege Privilege) error {
	if id == BootstrapAdminID {
		return ErrBootstrapAdminProtected
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Privilege() == privilege {
		return nil
	}
	return s.repo.SetSuperuser(ctx, id, privilege == PrivilegeAdministrator)
}

// Delete removes a user and cascades deletion of all its assignments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == BootstrapAdminID {
		return ErrBootstrapAdminProtected
	}
	return s.repo.DeleteCascade(ctx, id)
}

// GetByUsername resolves a username to its account.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// GetByID resolves a surrogate key to its account.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all accounts ordered by id.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// RegisterSession records a login session for auditing.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.RecordSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a recorded session on logout.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSessionRecord(ctx, id)
}
