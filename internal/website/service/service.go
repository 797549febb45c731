// Package service implements the storefront lifecycle: creation, tenant
// resolution, profile updates, support membership management, subscription
// renewal, and the code-confirmed transfer and deletion flows.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	userdomain "bazaar/backend/internal/user/domain"
	verdomain "bazaar/backend/internal/verification/domain"
	"bazaar/backend/internal/website/domain"
	"bazaar/backend/internal/website/repository"
)

// Sentinel errors for the website service; the handler maps them to statuses.
var (
	ErrTenantNotFound     = errors.New("no website exists for this domain name")
	ErrAlreadyOwnsWebsite = errors.New("user already owns a website")
	ErrUserNotFound       = errors.New("user not found")
	ErrMemberExists       = errors.New("user is already a support member of this website")
	ErrMemberNotFound     = errors.New("user is not a support member of this website")
)

// RoleManager grants and revokes platform roles, invalidating live sessions
// so embedded role snapshots cannot go stale.
type RoleManager interface {
	AddRole(ctx context.Context, userID string, role userdomain.Role) error
	RemoveRole(ctx context.Context, userID string, role userdomain.Role) error
}

// UserDirectory is the minimal user lookup needed by the website service.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// Codes issues and consumes the email confirmation codes guarding the
// destructive flows.
type Codes interface {
	Issue(ctx context.Context, email string, purpose verdomain.Purpose) error
	Consume(ctx context.Context, email string, purpose verdomain.Purpose, code string) error
}

type Service struct {
	websites repository.Repository
	users    UserDirectory
	roles    RoleManager
	codes    Codes
	now      func() time.Time
}

func NewService(websites repository.Repository, users UserDirectory, roles RoleManager, codes Codes) *Service {
	return &Service{
		websites: websites,
		users:    users,
		roles:    roles,
		codes:    codes,
		now:      time.Now,
	}
}

// Create opens a storefront for the user under the given domain name and
// grants them the seller role. A user owns at most one website.
func (s *Service) Create(ctx context.Context, userID, domainName string) (*domain.Website, error) {
	existing, err := s.websites.GetBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyOwnsWebsite
	}
	w := domain.New(uuid.NewString(), domainName, userID, s.now().UTC())
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.websites.Create(ctx, w); err != nil {
		return nil, err
	}
	if err := s.roles.AddRole(ctx, userID, userdomain.RoleSeller); err != nil {
		return nil, err
	}
	return w, nil
}

// ResolveTenant returns the website serving the exact domain name.
func (s *Service) ResolveTenant(ctx context.Context, domainName string) (*domain.Website, error) {
	w, err := s.websites.GetByDomain(ctx, domainName)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrTenantNotFound
	}
	return w, nil
}

// Membership returns the user's support membership on the website, or nil if
// they have none.
func (s *Service) Membership(ctx context.Context, w *domain.Website, userID string) (*domain.SupportMembership, error) {
	return s.websites.GetSupport(ctx, w.ID, userID)
}

// Rename moves the website to a new domain name.
func (s *Service) Rename(ctx context.Context, w *domain.Website, actorID, newDomain string) error {
	if newDomain == "" {
		return errors.New("domain name is required")
	}
	if err := s.websites.UpdateDomainName(ctx, w.ID, newDomain); err != nil {
		return err
	}
	w.DomainName = newDomain
	return s.recordUpdate(ctx, w.ID, actorID, "domain name changed to "+newDomain)
}

// SetOnline toggles storefront visibility.
func (s *Service) SetOnline(ctx context.Context, w *domain.Website, actorID string, online bool) error {
	if err := s.websites.UpdateOnline(ctx, w.ID, online); err != nil {
		return err
	}
	w.IsOnline = online
	change := "website taken offline"
	if online {
		change = "website brought online"
	}
	return s.recordUpdate(ctx, w.ID, actorID, change)
}

// UpdateBio replaces the storefront's bio document.
func (s *Service) UpdateBio(ctx context.Context, w *domain.Website, actorID string, bio domain.Bio) error {
	if err := s.websites.UpdateBio(ctx, w.ID, bio); err != nil {
		return err
	}
	w.Bio = bio
	return s.recordUpdate(ctx, w.ID, actorID, "bio updated")
}

// UpdateSEO replaces the storefront's SEO document.
func (s *Service) UpdateSEO(ctx context.Context, w *domain.Website, actorID string, seo domain.SEO) error {
	if err := s.websites.UpdateSEO(ctx, w.ID, seo); err != nil {
		return err
	}
	w.SEO = seo
	return s.recordUpdate(ctx, w.ID, actorID, "seo updated")
}

// ListUpdates returns one page of the website's update history.
func (s *Service) ListUpdates(ctx context.Context, websiteID string, limit, offset int) ([]*domain.UpdateEntry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.websites.ListUpdateEntries(ctx, websiteID, limit, offset)
}

// DeleteUpdates removes entries from the update history.
func (s *Service) DeleteUpdates(ctx context.Context, websiteID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.websites.DeleteUpdateEntries(ctx, websiteID, ids)
}

func (s *Service) recordUpdate(ctx context.Context, websiteID, actorID, changes string) error {
	return s.websites.AddUpdateEntry(ctx, &domain.UpdateEntry{
		ID:        uuid.NewString(),
		WebsiteID: websiteID,
		UpdatedBy: actorID,
		Changes:   changes,
		UpdatedAt: s.now().UTC(),
	})
}
