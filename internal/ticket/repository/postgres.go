package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bazaar/backend/internal/ticket/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a ticket repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ticketColumns = `id, website_id, author_id, subject, body, answer, status, created_at, updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	var t domain.Ticket
	err := row.Scan(&t.ID, &t.WebsiteID, &t.AuthorID, &t.Subject, &t.Body,
		&t.Answer, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) ListByWebsite(ctx context.Context, websiteID string, limit, offset int) ([]*domain.Ticket, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM tickets WHERE website_id = $1`, websiteID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE website_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		websiteID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.WebsiteID, &t.AuthorID, &t.Subject, &t.Body,
			&t.Answer, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &t)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, t *domain.Ticket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.WebsiteID, t.AuthorID, t.Subject, t.Body, t.Answer, t.Status,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) UpdateAnswer(ctx context.Context, id, answer string, status domain.Status, updatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET answer = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, answer, status, updatedAt,
	)
	return err
}
