package identity

import "time"

// BootstrapAdminID is the distinguished seed account that guarantees at
// least one privileged user always exists. It is protected by policy, not
// by a storage constraint.
const BootstrapAdminID int64 = 1

// Privilege is the two-valued access level of an account. An enumeration
// rather than a free-form string so a typo cannot silently demote anyone.
type Privilege int

const (
	PrivilegeMember Privilege = iota
	PrivilegeAdministrator
)

// ParsePrivilege maps the wire value to a Privilege. Anything other than
// "Administrator" is a member.
func ParsePrivilege(value string) Privilege {
	if value == "Administrator" {
		return PrivilegeAdministrator
	}
	return PrivilegeMember
}

func (p Privilege) String() string {
	if p == PrivilegeAdministrator {
		return "Administrator"
	}
	return "Member"
}

// User represents a user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Privilege returns the account's access level.
func (u *User) Privilege() Privilege {
	if u.IsSuperuser {
		return PrivilegeAdministrator
	}
	return PrivilegeMember
}
