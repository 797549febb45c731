package domain

import "time"

// Session binds a user to a device. At most one logged-in session exists per
// (user, device) pair, enforced by a partial unique index. AccessToken and
// RefreshToken are cleared when the session is logged out; MaxAge is the
// absolute expiry past which the session rejects requests even if its tokens
// still verify.
type Session struct {
	ID           string
	UserID       string
	Device       string // client device descriptor (User-Agent)
	AccessToken  string // empty once logged out
	RefreshToken string // empty once logged out
	MaxAge       time.Time
	LoggedIn     bool
	CreatedAt    time.Time
}

// Expired reports whether the session's absolute expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.MaxAge)
}
