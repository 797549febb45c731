package repository

import (
	"context"
	"database/sql"
	"errors"

	"bazaar/backend/internal/verification/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a verification-code repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, email string, purpose domain.Purpose) (*domain.Code, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, code, purpose, expires_at, verified, created_at
		FROM verification_codes WHERE email = $1 AND purpose = $2`,
		email, purpose,
	)
	var c domain.Code
	err := row.Scan(&c.ID, &c.Email, &c.Code, &c.Purpose, &c.ExpiresAt, &c.Verified, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *domain.Code) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_codes (id, email, code, purpose, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email, purpose) DO UPDATE
		SET id = EXCLUDED.id, code = EXCLUDED.code, expires_at = EXCLUDED.expires_at,
		    verified = FALSE, created_at = EXCLUDED.created_at`,
		c.ID, c.Email, c.Code, c.Purpose, c.ExpiresAt, c.Verified, c.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, email string, purpose domain.Purpose) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE email = $1 AND purpose = $2`, email, purpose)
	return err
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE verification_codes SET verified = TRUE WHERE id = $1`, id)
	return err
}
