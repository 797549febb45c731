// Package domain holds the website (storefront) aggregate: subscription
// state, support memberships, and profile fields.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Permission is a capability tag held by a support membership.
type Permission string

const (
	// PermissionAdmin subsumes every other tag; a membership holding it has
	// full access and no other tag on it is consulted.
	PermissionAdmin   Permission = "admin"
	PermissionProduct Permission = "product"
	PermissionOrder   Permission = "order"
	PermissionComment Permission = "comment"
	PermissionSEO     Permission = "seo"
)

// MaxPermissions caps how many tags a single membership may hold.
const MaxPermissions = 5

// ValidPermission reports whether p is in the closed tag vocabulary.
func ValidPermission(p Permission) bool {
	switch p {
	case PermissionAdmin, PermissionProduct, PermissionOrder, PermissionComment, PermissionSEO:
		return true
	}
	return false
}

// Mutation errors surfaced by membership permission changes.
var (
	ErrAlreadyAdmin        = errors.New("user is an admin and has all permissions")
	ErrDuplicatePermission = errors.New("user already has this permission")
	ErrPermissionNotHeld   = errors.New("user does not have this permission")
	ErrUnknownPermission   = errors.New("unknown permission")
	ErrTooManyPermissions  = fmt.Errorf("permissions cannot exceed %d items", MaxPermissions)
)

// SupportMembership grants a user scoped access to one website.
type SupportMembership struct {
	ID          string
	WebsiteID   string
	UserID      string
	Permissions []Permission
	CreatedAt   time.Time
}

// IsAdmin reports whether the membership holds the admin tag.
func (m *SupportMembership) IsAdmin() bool {
	return m.Has(PermissionAdmin)
}

// Has reports whether the membership holds p.
func (m *SupportMembership) Has(p Permission) bool {
	for _, have := range m.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// HasAny reports whether the membership holds at least one of required.
func (m *SupportMembership) HasAny(required []Permission) bool {
	for _, want := range required {
		if m.Has(want) {
			return true
		}
	}
	return false
}

// AddPermission applies the grant rules: an admin membership rejects further
// grants; granting admin collapses the set to exactly {admin}; a held tag is
// a duplicate; otherwise the tag is appended, capped at MaxPermissions.
func (m *SupportMembership) AddPermission(p Permission) error {
	if m.IsAdmin() {
		return ErrAlreadyAdmin
	}
	if !ValidPermission(p) {
		return ErrUnknownPermission
	}
	if p == PermissionAdmin {
		m.Permissions = []Permission{PermissionAdmin}
		return nil
	}
	if m.Has(p) {
		return ErrDuplicatePermission
	}
	if len(m.Permissions) >= MaxPermissions {
		return ErrTooManyPermissions
	}
	m.Permissions = append(m.Permissions, p)
	return nil
}

// RemovePermission removes p from the set. Removing admin is a plain removal,
// not special-cased.
func (m *SupportMembership) RemovePermission(p Permission) error {
	for i, have := range m.Permissions {
		if have == p {
			m.Permissions = append(m.Permissions[:i], m.Permissions[i+1:]...)
			return nil
		}
	}
	return ErrPermissionNotHeld
}

// Subscription is the website's recurring billing state. Active is a stored
// flag; the website is actually serviceable only while Active is true AND now
// is before NextPayment. Crossing NextPayment flips Active to false as a
// persisted side effect of the first gated request (or the nightly sweep).
type Subscription struct {
	Price       int64     `json:"price"`
	Active      bool      `json:"active"`
	LastPayment time.Time `json:"last_payment"`
	NextPayment time.Time `json:"next_payment"`
}

// DefaultPrice is the monthly subscription fee (IRR).
const DefaultPrice = 100000

// BillingPeriod is the paid window granted by one payment.
const BillingPeriod = 30 * 24 * time.Hour

// Lapsed reports whether the paid window has ended.
func (s *Subscription) Lapsed(now time.Time) bool {
	return !now.Before(s.NextPayment)
}

// SocialLinks holds the website's social media profile URLs.
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Bio is the website's free-form profile.
type Bio struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Email       string      `json:"email,omitempty"`
	Addresses   []string    `json:"addresses,omitempty"`
	SocialMedia SocialLinks `json:"social_media"`
}

// SEO holds the website's search engine fields.
type SEO struct {
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	MetaKeywords    []string `json:"meta_keywords,omitempty"`
	CanonicalURL    string   `json:"canonical_url,omitempty"`
	RobotsMeta      string   `json:"robots_meta,omitempty"`
}

// Banner is one storefront banner image with an optional link.
type Banner struct {
	Image string `json:"image"`
	Link  string `json:"link,omitempty"`
}

// UpdateEntry is one row of the website's update history.
type UpdateEntry struct {
	ID        string
	WebsiteID string
	UpdatedBy string
	Changes   string
	UpdatedAt time.Time
}

// Website is a seller's storefront under a globally unique domain name.
// SellerID never changes except through the explicit transfer flow.
type Website struct {
	ID           string
	DomainName   string
	SellerID     string
	IsOnline     bool
	Categories   []string
	Bio          Bio
	SEO          SEO
	Banners      []Banner
	Subscription Subscription
	CreatedAt    time.Time
}

// New returns a website for the seller with default subscription state:
// active, 30 days paid from now.
func New(id, domainName, sellerID string, now time.Time) *Website {
	return &Website{
		ID:         id,
		DomainName: domainName,
		SellerID:   sellerID,
		Subscription: Subscription{
			Price:       DefaultPrice,
			Active:      true,
			LastPayment: now,
			NextPayment: now.Add(BillingPeriod),
		},
		CreatedAt: now,
	}
}

// Validate validates the website for persistence.
func (w *Website) Validate() error {
	if w.DomainName == "" {
		return errors.New("domain name is required")
	}
	if w.SellerID == "" {
		return errors.New("seller id is required")
	}
	return nil
}
