package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"bazaar/backend/internal/session/domain"
)

// ErrDeviceSessionExists is returned by Create when a logged-in session
// already exists for the same (user, device) pair.
var ErrDeviceSessionExists = errors.New("a session already exists for this device")

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByAccessTokenAndDevice returns the session for (access token, device), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByAccessTokenAndDevice(ctx context.Context, accessToken, device string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, device, access_token, refresh_token, max_age, logged_in, created_at
		FROM sessions
		WHERE access_token = $1 AND device = $2`,
		accessToken, device,
	)
	var (
		s             domain.Session
		access, fresh sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Device, &access, &fresh, &s.MaxAge, &s.LoggedIn, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.AccessToken = access.String
	s.RefreshToken = fresh.String
	return &s, nil
}

// Create persists the session. Relies on the partial unique index over
// (user_id, device) WHERE logged_in to reject concurrent duplicate logins
// atomically instead of a lookup-before-insert check.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, device, access_token, refresh_token, max_age, logged_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.Device, s.AccessToken, s.RefreshToken, s.MaxAge, s.LoggedIn, s.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDeviceSessionExists
	}
	return err
}

// ReplaceAccessToken swaps the stored access token for the session.
func (r *PostgresRepository) ReplaceAccessToken(ctx context.Context, id, newAccessToken string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET access_token = $2 WHERE id = $1`,
		id, newAccessToken,
	)
	return err
}

// Logout clears both tokens and marks the session logged out.
func (r *PostgresRepository) Logout(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET access_token = NULL, refresh_token = NULL, logged_in = FALSE WHERE id = $1`,
		id,
	)
	return err
}

// LogoutAllForUser logs out every live session for the user.
func (r *PostgresRepository) LogoutAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET access_token = NULL, refresh_token = NULL, logged_in = FALSE WHERE user_id = $1 AND logged_in`,
		userID,
	)
	return err
}
