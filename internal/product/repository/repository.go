package repository

import (
	"context"
	"time"

	"bazaar/backend/internal/product/domain"
)

// Repository persists products for a storefront.
type Repository interface {
	// GetBySlug returns the product for (website, slug), or nil if not found.
	GetBySlug(ctx context.Context, websiteID, slug string) (*domain.Product, error)
	// ListByWebsite returns one page of the website's products plus the total count.
	ListByWebsite(ctx context.Context, websiteID string, limit, offset int) ([]*domain.Product, int, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, websiteID, slug string) error
	// ListWithOffers returns up to limit products carrying at least one offer
	// whose applied flag disagrees with its window at now. The sweep worker
	// pages through this until it returns empty.
	ListWithOffers(ctx context.Context, now time.Time, limit int) ([]*domain.Product, error)
}
