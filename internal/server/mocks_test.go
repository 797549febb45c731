package server

import (
	"context"
	"time"

	commentdomain "bazaar/backend/internal/comment/domain"
	productdomain "bazaar/backend/internal/product/domain"
	sessiondomain "bazaar/backend/internal/session/domain"
	sessionrepo "bazaar/backend/internal/session/repository"
	ticketdomain "bazaar/backend/internal/ticket/domain"
	userdomain "bazaar/backend/internal/user/domain"
	verdomain "bazaar/backend/internal/verification/domain"
	websitedomain "bazaar/backend/internal/website/domain"
	websiterepo "bazaar/backend/internal/website/repository"
)

type memUserRepo struct {
	users map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*userdomain.User)}
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	return m.users[id], nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) UpdateLoginState(_ context.Context, u *userdomain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) UpdateRoles(_ context.Context, id string, roles []userdomain.Role) (int64, error) {
	u := m.users[id]
	u.Roles = roles
	u.RoleVersion++
	return u.RoleVersion, nil
}

func (m *memUserRepo) SetVerified(_ context.Context, id string) error {
	m.users[id].Verified = true
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u := m.users[id]
	u.PasswordHash = passwordHash
	u.LoginAttempts = 0
	u.LockUntil = nil
	return nil
}

type memSessionRepo struct {
	sessions map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*sessiondomain.Session)}
}

func (m *memSessionRepo) GetByAccessTokenAndDevice(_ context.Context, accessToken, device string) (*sessiondomain.Session, error) {
	for _, s := range m.sessions {
		if s.AccessToken != "" && s.AccessToken == accessToken && s.Device == device {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSessionRepo) Create(_ context.Context, s *sessiondomain.Session) error {
	for _, existing := range m.sessions {
		if existing.LoggedIn && existing.UserID == s.UserID && existing.Device == s.Device {
			return sessionrepo.ErrDeviceSessionExists
		}
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionRepo) ReplaceAccessToken(_ context.Context, id, newAccessToken string) error {
	m.sessions[id].AccessToken = newAccessToken
	return nil
}

func (m *memSessionRepo) Logout(_ context.Context, id string) error {
	s := m.sessions[id]
	s.AccessToken = ""
	s.RefreshToken = ""
	s.LoggedIn = false
	return nil
}

func (m *memSessionRepo) LogoutAllForUser(ctx context.Context, userID string) error {
	for id, s := range m.sessions {
		if s.UserID == userID && s.LoggedIn {
			if err := m.Logout(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

type memWebsiteRepo struct {
	websites map[string]*websitedomain.Website
	supports map[string]*websitedomain.SupportMembership
	updates  []*websitedomain.UpdateEntry
}

func newMemWebsiteRepo() *memWebsiteRepo {
	return &memWebsiteRepo{
		websites: make(map[string]*websitedomain.Website),
		supports: make(map[string]*websitedomain.SupportMembership),
	}
}

func supportKey(websiteID, userID string) string { return websiteID + "|" + userID }

func (m *memWebsiteRepo) GetByDomain(_ context.Context, domainName string) (*websitedomain.Website, error) {
	for _, w := range m.websites {
		if w.DomainName == domainName {
			return w, nil
		}
	}
	return nil, nil
}

func (m *memWebsiteRepo) GetBySeller(_ context.Context, sellerID string) (*websitedomain.Website, error) {
	for _, w := range m.websites {
		if w.SellerID == sellerID {
			return w, nil
		}
	}
	return nil, nil
}

func (m *memWebsiteRepo) Create(ctx context.Context, w *websitedomain.Website) error {
	if existing, _ := m.GetByDomain(ctx, w.DomainName); existing != nil {
		return websiterepo.ErrDomainTaken
	}
	m.websites[w.ID] = w
	return nil
}

func (m *memWebsiteRepo) UpdateDomainName(ctx context.Context, id, newDomain string) error {
	if existing, _ := m.GetByDomain(ctx, newDomain); existing != nil && existing.ID != id {
		return websiterepo.ErrDomainTaken
	}
	m.websites[id].DomainName = newDomain
	return nil
}

func (m *memWebsiteRepo) UpdateSeller(_ context.Context, id, newSellerID string) error {
	m.websites[id].SellerID = newSellerID
	return nil
}

func (m *memWebsiteRepo) UpdateOnline(_ context.Context, id string, online bool) error {
	m.websites[id].IsOnline = online
	return nil
}

func (m *memWebsiteRepo) UpdateBio(_ context.Context, id string, bio websitedomain.Bio) error {
	m.websites[id].Bio = bio
	return nil
}

func (m *memWebsiteRepo) UpdateSEO(_ context.Context, id string, seo websitedomain.SEO) error {
	m.websites[id].SEO = seo
	return nil
}

func (m *memWebsiteRepo) SetSubscriptionInactive(_ context.Context, id string) error {
	m.websites[id].Subscription.Active = false
	return nil
}

func (m *memWebsiteRepo) UpdateSubscription(_ context.Context, id string, sub websitedomain.Subscription) error {
	m.websites[id].Subscription = sub
	return nil
}

func (m *memWebsiteRepo) DeactivateLapsed(_ context.Context, now time.Time, limit int) (int64, error) {
	var n int64
	for _, w := range m.websites {
		if w.Subscription.Active && w.Subscription.Lapsed(now) && n < int64(limit) {
			w.Subscription.Active = false
			n++
		}
	}
	return n, nil
}

func (m *memWebsiteRepo) Delete(_ context.Context, id string) error {
	delete(m.websites, id)
	return nil
}

func (m *memWebsiteRepo) GetSupport(_ context.Context, websiteID, userID string) (*websitedomain.SupportMembership, error) {
	return m.supports[supportKey(websiteID, userID)], nil
}

func (m *memWebsiteRepo) ListSupports(_ context.Context, websiteID string) ([]*websitedomain.SupportMembership, error) {
	var out []*websitedomain.SupportMembership
	for _, s := range m.supports {
		if s.WebsiteID == websiteID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memWebsiteRepo) CountMembershipsForUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, s := range m.supports {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memWebsiteRepo) CreateSupport(_ context.Context, s *websitedomain.SupportMembership) error {
	m.supports[supportKey(s.WebsiteID, s.UserID)] = s
	return nil
}

func (m *memWebsiteRepo) UpdateSupportPermissions(_ context.Context, s *websitedomain.SupportMembership) error {
	m.supports[supportKey(s.WebsiteID, s.UserID)] = s
	return nil
}

func (m *memWebsiteRepo) DeleteSupport(_ context.Context, websiteID, userID string) error {
	delete(m.supports, supportKey(websiteID, userID))
	return nil
}

func (m *memWebsiteRepo) AddUpdateEntry(_ context.Context, e *websitedomain.UpdateEntry) error {
	m.updates = append(m.updates, e)
	return nil
}

func (m *memWebsiteRepo) ListUpdateEntries(_ context.Context, websiteID string, limit, offset int) ([]*websitedomain.UpdateEntry, int, error) {
	var all []*websitedomain.UpdateEntry
	for _, e := range m.updates {
		if e.WebsiteID == websiteID {
			all = append(all, e)
		}
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memWebsiteRepo) DeleteUpdateEntries(_ context.Context, websiteID string, ids []string) (int64, error) {
	var kept []*websitedomain.UpdateEntry
	var removed int64
	for _, e := range m.updates {
		match := false
		for _, id := range ids {
			if e.WebsiteID == websiteID && e.ID == id {
				match = true
				break
			}
		}
		if match {
			removed++
		} else {
			kept = append(kept, e)
		}
	}
	m.updates = kept
	return removed, nil
}

type memProductRepo struct {
	products map[string]*productdomain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[string]*productdomain.Product)}
}

func productKey(websiteID, slug string) string { return websiteID + "|" + slug }

func (m *memProductRepo) GetBySlug(_ context.Context, websiteID, slug string) (*productdomain.Product, error) {
	return m.products[productKey(websiteID, slug)], nil
}

func (m *memProductRepo) ListByWebsite(_ context.Context, websiteID string, limit, offset int) ([]*productdomain.Product, int, error) {
	var all []*productdomain.Product
	for _, p := range m.products {
		if p.WebsiteID == websiteID {
			all = append(all, p)
		}
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memProductRepo) Create(_ context.Context, p *productdomain.Product) error {
	m.products[productKey(p.WebsiteID, p.Slug)] = p
	return nil
}

func (m *memProductRepo) Update(_ context.Context, p *productdomain.Product) error {
	m.products[productKey(p.WebsiteID, p.Slug)] = p
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, websiteID, slug string) error {
	delete(m.products, productKey(websiteID, slug))
	return nil
}

func (m *memProductRepo) ListWithOffers(_ context.Context, now time.Time, limit int) ([]*productdomain.Product, error) {
	var out []*productdomain.Product
	for _, p := range m.products {
		for _, o := range p.SpecialOffers {
			if o.Applied != o.ActiveAt(now) {
				out = append(out, p)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memCommentRepo struct {
	comments map[string]*commentdomain.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: make(map[string]*commentdomain.Comment)}
}

func (m *memCommentRepo) GetByID(_ context.Context, id string) (*commentdomain.Comment, error) {
	return m.comments[id], nil
}

func (m *memCommentRepo) ListByProduct(_ context.Context, websiteID, slug string, limit, offset int) ([]*commentdomain.Comment, int, error) {
	var all []*commentdomain.Comment
	for _, c := range m.comments {
		if c.WebsiteID == websiteID && c.ProductSlug == slug {
			all = append(all, c)
		}
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memCommentRepo) CountByProduct(_ context.Context, websiteID, slug string) (int, error) {
	n := 0
	for _, c := range m.comments {
		if c.WebsiteID == websiteID && c.ProductSlug == slug {
			n++
		}
	}
	return n, nil
}

func (m *memCommentRepo) Create(_ context.Context, c *commentdomain.Comment) error {
	m.comments[c.ID] = c
	return nil
}

func (m *memCommentRepo) Delete(_ context.Context, id string) error {
	delete(m.comments, id)
	return nil
}

type memTicketRepo struct {
	tickets map[string]*ticketdomain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]*ticketdomain.Ticket)}
}

func (m *memTicketRepo) GetByID(_ context.Context, id string) (*ticketdomain.Ticket, error) {
	return m.tickets[id], nil
}

func (m *memTicketRepo) ListByWebsite(_ context.Context, websiteID string, limit, offset int) ([]*ticketdomain.Ticket, int, error) {
	var all []*ticketdomain.Ticket
	for _, t := range m.tickets {
		if t.WebsiteID == websiteID {
			all = append(all, t)
		}
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memTicketRepo) Create(_ context.Context, t *ticketdomain.Ticket) error {
	m.tickets[t.ID] = t
	return nil
}

func (m *memTicketRepo) UpdateAnswer(_ context.Context, id, answer string, status ticketdomain.Status, updatedAt time.Time) error {
	t := m.tickets[id]
	t.Answer = answer
	t.Status = status
	t.UpdatedAt = updatedAt
	return nil
}

type memVerificationRepo struct {
	codes map[string]*verdomain.Code
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{codes: make(map[string]*verdomain.Code)}
}

func codeKey(email string, purpose verdomain.Purpose) string {
	return email + "|" + string(purpose)
}

func (m *memVerificationRepo) Get(_ context.Context, email string, purpose verdomain.Purpose) (*verdomain.Code, error) {
	return m.codes[codeKey(email, purpose)], nil
}

func (m *memVerificationRepo) Upsert(_ context.Context, c *verdomain.Code) error {
	m.codes[codeKey(c.Email, c.Purpose)] = c
	return nil
}

func (m *memVerificationRepo) Delete(_ context.Context, email string, purpose verdomain.Purpose) error {
	delete(m.codes, codeKey(email, purpose))
	return nil
}

func (m *memVerificationRepo) MarkVerified(_ context.Context, id string) error {
	for _, c := range m.codes {
		if c.ID == id {
			c.Verified = true
		}
	}
	return nil
}
