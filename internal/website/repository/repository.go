package repository

import (
	"context"
	"time"

	"bazaar/backend/internal/website/domain"
)

// Repository defines persistence for websites, their support memberships, and
// their update history.
type Repository interface {
	GetByDomain(ctx context.Context, domainName string) (*domain.Website, error)
	GetBySeller(ctx context.Context, sellerID string) (*domain.Website, error)
	Create(ctx context.Context, w *domain.Website) error
	// UpdateDomainName renames the website. Returns ErrDomainTaken when the new
	// name is already in use.
	UpdateDomainName(ctx context.Context, id, newDomain string) error
	UpdateSeller(ctx context.Context, id, newSellerID string) error
	UpdateOnline(ctx context.Context, id string, online bool) error
	UpdateBio(ctx context.Context, id string, bio domain.Bio) error
	UpdateSEO(ctx context.Context, id string, seo domain.SEO) error
	// SetSubscriptionInactive persists the lapse flip. Never reactivates.
	SetSubscriptionInactive(ctx context.Context, id string) error
	// UpdateSubscription replaces the full subscription state. Used by renewal.
	UpdateSubscription(ctx context.Context, id string, sub domain.Subscription) error
	// DeactivateLapsed flips every active subscription whose next payment is at
	// or before now, up to limit rows. Returns the number flipped. Used by the
	// nightly sweep; the request-path gate covers single websites.
	DeactivateLapsed(ctx context.Context, now time.Time, limit int) (int64, error)
	Delete(ctx context.Context, id string) error

	GetSupport(ctx context.Context, websiteID, userID string) (*domain.SupportMembership, error)
	ListSupports(ctx context.Context, websiteID string) ([]*domain.SupportMembership, error)
	// CountMembershipsForUser returns how many websites the user supports.
	CountMembershipsForUser(ctx context.Context, userID string) (int, error)
	CreateSupport(ctx context.Context, m *domain.SupportMembership) error
	UpdateSupportPermissions(ctx context.Context, m *domain.SupportMembership) error
	DeleteSupport(ctx context.Context, websiteID, userID string) error

	AddUpdateEntry(ctx context.Context, e *domain.UpdateEntry) error
	ListUpdateEntries(ctx context.Context, websiteID string, limit, offset int) ([]*domain.UpdateEntry, int, error)
	DeleteUpdateEntries(ctx context.Context, websiteID string, ids []string) (int64, error)
}
