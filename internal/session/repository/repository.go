package repository

import (
	"context"

	"bazaar/backend/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	// GetByAccessTokenAndDevice returns the session holding the given access
	// token for the given device, or nil if none.
	GetByAccessTokenAndDevice(ctx context.Context, accessToken, device string) (*domain.Session, error)
	// Create persists a new session. Returns ErrDeviceSessionExists when a
	// logged-in session already exists for the same (user, device) pair.
	Create(ctx context.Context, s *domain.Session) error
	// ReplaceAccessToken swaps the session's stored access token. Used when an
	// expired access token is refreshed in place.
	ReplaceAccessToken(ctx context.Context, id, newAccessToken string) error
	// Logout clears both tokens and marks the session logged out.
	Logout(ctx context.Context, id string) error
	// LogoutAllForUser logs out every live session for the user. Used when the
	// role set changes and embedded role snapshots go stale.
	LogoutAllForUser(ctx context.Context, userID string) error
}
