package repository

import (
	"context"
	"time"

	"bazaar/backend/internal/ticket/domain"
)

// Repository persists support tickets.
type Repository interface {
	// GetByID returns the ticket, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// ListByWebsite returns one page of the website's tickets, newest first,
	// plus the total count.
	ListByWebsite(ctx context.Context, websiteID string, limit, offset int) ([]*domain.Ticket, int, error)
	Create(ctx context.Context, t *domain.Ticket) error
	// UpdateAnswer stores the answer and moves the ticket to the given status.
	UpdateAnswer(ctx context.Context, id, answer string, status domain.Status, updatedAt time.Time) error
}
