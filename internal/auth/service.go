// Package auth implements registration, login with device-bound sessions, and
// request identity resolution with in-place access token refresh.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bazaar/backend/internal/platform/authz"
	"bazaar/backend/internal/security"
	sessiondomain "bazaar/backend/internal/session/domain"
	sessionrepo "bazaar/backend/internal/session/repository"
	userdomain "bazaar/backend/internal/user/domain"
	userrepo "bazaar/backend/internal/user/repository"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrAlreadyLoggedIn    = errors.New("a session already exists for this device")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session has expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
)

const (
	maxLoginAttempts = 5
	lockDuration     = time.Hour
)

type Service struct {
	users      userrepo.Repository
	sessions   sessionrepo.Repository
	tokens     *security.TokenProvider
	hasher     *security.Hasher
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(users userrepo.Repository, sessions sessionrepo.Repository, tokens *security.TokenProvider, hasher *security.Hasher, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register creates a new, unverified buyer account.
func (s *Service) Register(ctx context.Context, email, phone, password, firstName, lastName string) (*userdomain.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &userdomain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        []userdomain.Role{userdomain.RoleBuyer},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyEmail flags the account as confirmed once its verification code has
// been accepted.
func (s *Service) VerifyEmail(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return s.users.SetVerified(ctx, u.ID)
}

// UserByEmail returns the account for the email, or nil if none exists.
func (s *Service) UserByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// MinPasswordLength is the shortest password accepted on reset.
const MinPasswordLength = 8

// ResetPassword replaces the account's password, clears any login lockout,
// and closes every open session so stolen credentials stop working. The
// caller is responsible for having validated a reset code first.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return s.sessions.LogoutAllForUser(ctx, u.ID)
}

// LoginResult carries everything the transport layer needs after a login.
type LoginResult struct {
	User         *userdomain.User
	Session      *sessiondomain.Session
	AccessToken  string
	RefreshToken string
}

// Login verifies the credentials and opens a session bound to the device.
// Five consecutive failures lock the account for an hour. A device that
// already holds a live session is refused rather than replaced.
func (s *Service) Login(ctx context.Context, email, password, device string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	now := s.now().UTC()
	if u.Locked(now) {
		return nil, ErrAccountLocked
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		return nil, s.recordFailure(ctx, u, now)
	}
	if u.LoginAttempts > 0 || u.LockUntil != nil {
		u.LoginAttempts = 0
		u.LockUntil = nil
		if err := s.users.UpdateLoginState(ctx, u); err != nil {
			return nil, err
		}
	}

	access, err := s.tokens.IssueAccess(u.ID, u.RoleStrings(), u.RoleVersion)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(u.ID, u.RoleStrings(), u.RoleVersion)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		Device:       device,
		AccessToken:  access,
		RefreshToken: refresh,
		MaxAge:       now.Add(s.sessionTTL),
		LoggedIn:     true,
		CreatedAt:    now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		if errors.Is(err, sessionrepo.ErrDeviceSessionExists) {
			return nil, ErrAlreadyLoggedIn
		}
		return nil, err
	}
	return &LoginResult{User: u, Session: sess, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) recordFailure(ctx context.Context, u *userdomain.User, now time.Time) error {
	u.LoginAttempts++
	if u.LoginAttempts >= maxLoginAttempts {
		until := now.Add(lockDuration)
		u.LockUntil = &until
		u.LoginAttempts = 0
	}
	if err := s.users.UpdateLoginState(ctx, u); err != nil {
		return err
	}
	if u.LockUntil != nil {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// Logout closes the session holding the supplied access token on the device.
func (s *Service) Logout(ctx context.Context, accessToken, device string) error {
	sess, err := s.sessions.GetByAccessTokenAndDevice(ctx, accessToken, device)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	return s.sessions.Logout(ctx, sess.ID)
}

// Resolve authenticates a request from its access token and device. When the
// access token has expired but the session's refresh token is still good, a
// new access token is minted and swapped into the session in place; the
// caller must hand the replacement back to the client. A session whose
// refresh token has also expired is logged out and the caller must
// re-authenticate.
func (s *Service) Resolve(ctx context.Context, accessToken, device string) (authz.Principal, string, error) {
	sess, err := s.sessions.GetByAccessTokenAndDevice(ctx, accessToken, device)
	if err != nil {
		return authz.Principal{}, "", err
	}
	if sess == nil {
		return authz.Principal{}, "", ErrSessionNotFound
	}
	if sess.Expired(s.now().UTC()) {
		if err := s.sessions.Logout(ctx, sess.ID); err != nil {
			return authz.Principal{}, "", err
		}
		return authz.Principal{}, "", ErrSessionExpired
	}

	claims, err := s.tokens.ValidateAccess(accessToken)
	if err == nil {
		return principalFrom(claims, sess.ID), "", nil
	}

	claims, err = s.tokens.ValidateRefresh(sess.RefreshToken)
	if err != nil {
		if err := s.sessions.Logout(ctx, sess.ID); err != nil {
			return authz.Principal{}, "", err
		}
		return authz.Principal{}, "", ErrSessionExpired
	}
	fresh, err := s.tokens.IssueAccess(claims.Subject, claims.Roles, claims.RoleVersion)
	if err != nil {
		return authz.Principal{}, "", err
	}
	if err := s.sessions.ReplaceAccessToken(ctx, sess.ID, fresh); err != nil {
		return authz.Principal{}, "", err
	}
	return principalFrom(claims, sess.ID), fresh, nil
}

func principalFrom(claims *security.Claims, sessionID string) authz.Principal {
	return authz.Principal{
		UserID:      claims.Subject,
		SessionID:   sessionID,
		Roles:       claims.Roles,
		RoleVersion: claims.RoleVersion,
	}
}

// AddRole grants the role if the user does not already hold it, bumping the
// role version and closing every live session so no token carries a stale
// role snapshot.
func (s *Service) AddRole(ctx context.Context, userID string, role userdomain.Role) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if u.HasRole(role) {
		return nil
	}
	return s.applyRoles(ctx, u, append(u.Roles, role))
}

// RemoveRole revokes the role if held. Same session invalidation as AddRole.
func (s *Service) RemoveRole(ctx context.Context, userID string, role userdomain.Role) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if !u.HasRole(role) {
		return nil
	}
	roles := make([]userdomain.Role, 0, len(u.Roles)-1)
	for _, r := range u.Roles {
		if r != role {
			roles = append(roles, r)
		}
	}
	return s.applyRoles(ctx, u, roles)
}

func (s *Service) applyRoles(ctx context.Context, u *userdomain.User, roles []userdomain.Role) error {
	version, err := s.users.UpdateRoles(ctx, u.ID, roles)
	if err != nil {
		return err
	}
	u.Roles = roles
	u.RoleVersion = version
	return s.sessions.LogoutAllForUser(ctx, u.ID)
}
