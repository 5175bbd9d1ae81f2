// Package authz holds the pure authorization decisions gating privileged
// operations. Identity resolution always runs first; the remaining guards
// are independent of each other.
package authz

import (
	"context"

	"github.com/courseboard/courseboard/internal/identity"
	"github.com/courseboard/courseboard/internal/roles"
	"github.com/courseboard/courseboard/internal/shared"
)

var (
	// ErrSelfAction rejects delete and privilege changes aimed at the
	// caller's own account through the admin path.
	ErrSelfAction = shared.Authorization("cannot perform this action on your own account")
)

// IdentityResolver resolves the session username to an account.
type IdentityResolver interface {
	GetByUsername(ctx context.Context, username string) (*identity.User, error)
}

// Policy composes the decision functions over the identity store.
type Policy struct {
	identities IdentityResolver
}

// NewPolicy constructs a Policy.
func NewPolicy(identities IdentityResolver) *Policy {
	return &Policy{identities: identities}
}

// RequireAuthenticated returns the session username or fails for an
// anonymous session.
func RequireAuthenticated(sess *shared.Session) (string, error) {
	if sess == nil || sess.User() == "" {
		return "", shared.ErrNotAuthenticated
	}
	return sess.User(), nil
}

// RequireSuperuser resolves the session identity and checks the superuser
// flag. A stale session naming a deleted account is treated as anonymous.
func (p *Policy) RequireSuperuser(ctx context.Context, sess *shared.Session) (*identity.User, error) {
	username, err := RequireAuthenticated(sess)
	if err != nil {
		return nil, err
	}
	user, err := p.identities.GetByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrNotAuthenticated
	}
	if !user.IsSuperuser {
		return nil, shared.ErrPermissionDenied
	}
	return user, nil
}

// GuardSelfAction rejects an operation a superuser aims at their own
// account, even though they pass the superuser check.
func GuardSelfAction(actingUserID, targetUserID int64) error {
	if actingUserID == targetUserID {
		return ErrSelfAction
	}
	return nil
}

// GuardBootstrapAdmin rejects delete and privilege-change on the seed
// account regardless of caller privilege.
func GuardBootstrapAdmin(targetUserID int64) error {
	if targetUserID == identity.BootstrapAdminID {
		return identity.ErrBootstrapAdminProtected
	}
	return nil
}

// GuardProtectedRole rejects deletion of the three seeded roles.
func GuardProtectedRole(roleID int64) error {
	if roles.IsProtected(roleID) {
		return roles.ErrProtectedRole
	}
	return nil
}
