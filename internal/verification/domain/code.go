// Package domain holds short-lived verification codes sent to users by email.
package domain

import "time"

// Purpose names the flow a code belongs to. A code minted for one purpose
// cannot confirm another.
type Purpose string

const (
	PurposeVerifyEmail     Purpose = "verify_email"
	PurposeAddSupport      Purpose = "add_support"
	PurposeWebsiteDelete   Purpose = "website_delete"
	PurposeWebsiteTransfer Purpose = "website_transfer"
	PurposeResetPassword   Purpose = "reset_password"
)

// TTL is how long a code stays valid, and also the minimum gap between
// consecutive sends to the same address for the same purpose.
const TTL = 60 * time.Second

type Code struct {
	ID        string
	Email     string
	Code      string
	Purpose   Purpose
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be confirmed.
func (c *Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
