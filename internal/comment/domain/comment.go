// Package domain holds product comments left by buyers on a storefront.
package domain

import (
	"errors"
	"time"
)

// MaxContentLength caps a comment's body.
const MaxContentLength = 1000

// Comment is one buyer remark on a product, addressed by the owning website
// and the product's slug.
type Comment struct {
	ID          string
	WebsiteID   string
	ProductSlug string
	AuthorID    string
	Content     string
	CreatedAt   time.Time
}

// Validate validates the comment for persistence.
func (c *Comment) Validate() error {
	if c.WebsiteID == "" {
		return errors.New("website id is required")
	}
	if c.ProductSlug == "" {
		return errors.New("product slug is required")
	}
	if c.AuthorID == "" {
		return errors.New("author id is required")
	}
	if c.Content == "" {
		return errors.New("comment content is required")
	}
	if len(c.Content) > MaxContentLength {
		return errors.New("comment content is too long")
	}
	return nil
}
