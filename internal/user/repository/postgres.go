package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"bazaar/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, phone, password_hash, first_name, last_name, roles, role_version, login_attempts, lock_until, verified, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user for email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists the user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Email, u.Phone, u.PasswordHash, u.FirstName, u.LastName,
		roles, u.RoleVersion, u.LoginAttempts, timeToNullTime(u.LockUntil),
		u.Verified, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// UpdateLoginState persists login attempt counters and the lock timestamp.
func (r *PostgresRepository) UpdateLoginState(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET login_attempts = $2, lock_until = $3, updated_at = now()
		WHERE id = $1`,
		u.ID, u.LoginAttempts, timeToNullTime(u.LockUntil),
	)
	return err
}

// UpdateRoles persists the role set and bumps role_version, returning the new version.
func (r *PostgresRepository) UpdateRoles(ctx context.Context, id string, roles []domain.Role) (int64, error) {
	encoded, err := json.Marshal(roles)
	if err != nil {
		return 0, err
	}
	var version int64
	err = r.db.QueryRowContext(ctx, `
		UPDATE users SET roles = $2, role_version = role_version + 1, updated_at = now()
		WHERE id = $1
		RETURNING role_version`,
		id, encoded,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.New("user not found")
		}
		return 0, err
	}
	return version, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		roles     []byte
		lockUntil sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.FirstName, &u.LastName,
		&roles, &u.RoleVersion, &u.LoginAttempts, &lockUntil,
		&u.Verified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(roles, &u.Roles); err != nil {
		return nil, err
	}
	if lockUntil.Valid {
		t := lockUntil.Time
		u.LockUntil = &t
	}
	return &u, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// SetVerified marks the user's email address as confirmed.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET verified = TRUE, updated_at = now() WHERE id = $1`, id)
	return err
}

// UpdatePassword replaces the password hash and clears the lockout state.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, login_attempts = 0, lock_until = NULL, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	return err
}
