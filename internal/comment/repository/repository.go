package repository

import (
	"context"

	"bazaar/backend/internal/comment/domain"
)

// Repository persists product comments.
type Repository interface {
	// GetByID returns the comment, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListByProduct returns one page of a product's comments, newest first,
	// plus the total count.
	ListByProduct(ctx context.Context, websiteID, slug string, limit, offset int) ([]*domain.Comment, int, error)
	// CountByProduct returns how many comments the product has.
	CountByProduct(ctx context.Context, websiteID, slug string) (int, error)
	Create(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id string) error
}
