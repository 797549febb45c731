// Package authz decides what an authenticated principal may do to a
// storefront: ownership, support capability checks, and subscription gating.
package authz

// Principal is the authenticated caller as resolved from a live session.
// Roles and RoleVersion come from the token claims; sessions are logged out
// whenever a user's role set changes, so the snapshot here is never stale.
type Principal struct {
	UserID      string
	SessionID   string
	Roles       []string
	RoleVersion int64
}

// HasRole reports whether the principal carries the named platform role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
