package authz

import (
	"errors"

	"bazaar/backend/internal/website/domain"
)

// Denial reasons surfaced by Evaluate, in precedence order.
var (
	ErrNotSupportRole         = errors.New("user does not hold the support role")
	ErrNotAMember             = errors.New("user is not a member of this website")
	ErrInsufficientPermission = errors.New("user lacks the required permission")
)

const (
	roleSeller  = "seller"
	roleSupport = "support"
)

// Evaluate decides whether the principal may perform an action on the website
// that requires any one of the given capability tags. Checks run in strict
// precedence order and the first applicable rule wins:
//
//  1. the website's owner, holding the seller role, is allowed unconditionally;
//  2. a caller without the support role is refused;
//  3. a support caller with no membership on this website is refused;
//  4. a membership holding the admin tag is allowed;
//  5. a membership holding any required tag is allowed;
//  6. otherwise the caller is refused.
//
// With no required tags the action is owner-or-admin only: step 5 can never
// match an empty set.
func Evaluate(p Principal, w *domain.Website, m *domain.SupportMembership, required ...domain.Permission) error {
	if p.UserID == w.SellerID && p.HasRole(roleSeller) {
		return nil
	}
	if !p.HasRole(roleSupport) {
		return ErrNotSupportRole
	}
	if m == nil || m.WebsiteID != w.ID || m.UserID != p.UserID {
		return ErrNotAMember
	}
	if m.IsAdmin() {
		return nil
	}
	if m.HasAny(required) {
		return nil
	}
	return ErrInsufficientPermission
}
