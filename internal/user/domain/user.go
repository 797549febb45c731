package domain

import (
	"errors"
	"time"
)

// Role is one of the account role tags. Roles are additive: every seller is
// also a buyer, and the support role is granted when a user accepts a support
// membership on any website.
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleSeller  Role = "seller"
	RoleSupport Role = "support"
	RoleAdmin   Role = "admin"
)

// User is the core account entity.
type User struct {
	ID           string
	Email        string
	Phone        string
	PasswordHash string
	FirstName    string
	LastName     string
	// Roles held by the account. Tokens embed a snapshot of this set; RoleVersion
	// is bumped on every role change so stale snapshots can be detected.
	Roles       []Role
	RoleVersion int64
	// LoginAttempts counts consecutive failed logins; LockUntil is set after
	// too many failures and cleared on success.
	LoginAttempts int
	LockUntil     *time.Time
	Verified      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if len(u.Roles) == 0 {
		u.Roles = []Role{RoleBuyer}
	}
	return nil
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// RoleStrings returns the role set as plain strings for embedding in token claims.
func (u *User) RoleStrings() []string {
	out := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings converts token claim roles back to the typed set.
func RolesFromStrings(in []string) []Role {
	out := make([]Role, len(in))
	for i, s := range in {
		out[i] = Role(s)
	}
	return out
}

// HasRoleString reports whether the string role set contains r.
func HasRoleString(roles []string, r Role) bool {
	for _, have := range roles {
		if Role(have) == r {
			return true
		}
	}
	return false
}

// Locked reports whether the account is locked against login at the given time.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}
