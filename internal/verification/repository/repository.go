package repository

import (
	"context"

	"bazaar/backend/internal/verification/domain"
)

// Repository persists verification codes. At most one live code exists per
// (email, purpose) pair; Upsert replaces any previous one.
type Repository interface {
	// Get returns the code for (email, purpose), or nil if none exists.
	Get(ctx context.Context, email string, purpose domain.Purpose) (*domain.Code, error)
	Upsert(ctx context.Context, c *domain.Code) error
	Delete(ctx context.Context, email string, purpose domain.Purpose) error
	MarkVerified(ctx context.Context, id string) error
}
