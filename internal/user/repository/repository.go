package repository

import (
	"context"

	"bazaar/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateLoginState persists login attempt counters and the lock timestamp.
	UpdateLoginState(ctx context.Context, u *domain.User) error
	// UpdateRoles persists the role set and bumps role_version atomically,
	// returning the new version.
	UpdateRoles(ctx context.Context, id string, roles []domain.Role) (int64, error)
	// SetVerified marks the user's email address as confirmed.
	SetVerified(ctx context.Context, id string) error
	// UpdatePassword replaces the password hash and clears the lockout state.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
