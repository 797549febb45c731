package service

import (
	"context"

	"github.com/google/uuid"

	userdomain "bazaar/backend/internal/user/domain"
	verdomain "bazaar/backend/internal/verification/domain"
	"bazaar/backend/internal/website/domain"
)

// RequestAddSupport mails a confirmation code to the prospective support
// member. The user must exist and must not already be a member.
func (s *Service) RequestAddSupport(ctx context.Context, w *domain.Website, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	existing, err := s.websites.GetSupport(ctx, w.ID, u.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrMemberExists
	}
	return s.codes.Issue(ctx, email, verdomain.PurposeAddSupport)
}

// AddSupport enrolls the user as a support member once they present the code
// mailed by RequestAddSupport. The membership starts with the single initial
// capability tag and the user gains the platform support role.
func (s *Service) AddSupport(ctx context.Context, w *domain.Website, email, code string, initial domain.Permission) (*domain.SupportMembership, error) {
	if !domain.ValidPermission(initial) {
		return nil, domain.ErrUnknownPermission
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	existing, err := s.websites.GetSupport(ctx, w.ID, u.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberExists
	}
	if err := s.codes.Consume(ctx, email, verdomain.PurposeAddSupport, code); err != nil {
		return nil, err
	}
	m := &domain.SupportMembership{
		ID:          uuid.NewString(),
		WebsiteID:   w.ID,
		UserID:      u.ID,
		Permissions: []domain.Permission{initial},
		CreatedAt:   s.now().UTC(),
	}
	if err := s.websites.CreateSupport(ctx, m); err != nil {
		return nil, err
	}
	if err := s.roles.AddRole(ctx, u.ID, userdomain.RoleSupport); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveSupport drops the user's membership. When it was their last one the
// platform support role is revoked as well.
func (s *Service) RemoveSupport(ctx context.Context, w *domain.Website, userID string) error {
	m, err := s.websites.GetSupport(ctx, w.ID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMemberNotFound
	}
	if err := s.websites.DeleteSupport(ctx, w.ID, userID); err != nil {
		return err
	}
	remaining, err := s.websites.CountMembershipsForUser(ctx, userID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return s.roles.RemoveRole(ctx, userID, userdomain.RoleSupport)
	}
	return nil
}

// SupportDetail pairs a membership with the member's account fields.
type SupportDetail struct {
	Membership *domain.SupportMembership
	Email      string
	FirstName  string
	LastName   string
}

// ListSupports returns every support membership on the website, joined with
// the member's account fields.
func (s *Service) ListSupports(ctx context.Context, w *domain.Website) ([]SupportDetail, error) {
	ms, err := s.websites.ListSupports(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	out := make([]SupportDetail, 0, len(ms))
	for _, m := range ms {
		d := SupportDetail{Membership: m}
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			d.Email = u.Email
			d.FirstName = u.FirstName
			d.LastName = u.LastName
		}
		out = append(out, d)
	}
	return out, nil
}

// GrantPermission adds a capability tag to the member's set. Granting admin
// collapses the set to admin alone; granting anything to an admin is refused.
func (s *Service) GrantPermission(ctx context.Context, w *domain.Website, userID string, p domain.Permission) (*domain.SupportMembership, error) {
	m, err := s.websites.GetSupport(ctx, w.ID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	if err := m.AddPermission(p); err != nil {
		return nil, err
	}
	if err := s.websites.UpdateSupportPermissions(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RevokePermission removes a capability tag from the member's set.
func (s *Service) RevokePermission(ctx context.Context, w *domain.Website, userID string, p domain.Permission) (*domain.SupportMembership, error) {
	m, err := s.websites.GetSupport(ctx, w.ID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	if err := m.RemovePermission(p); err != nil {
		return nil, err
	}
	if err := s.websites.UpdateSupportPermissions(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
