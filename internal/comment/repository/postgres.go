package repository

import (
	"context"
	"database/sql"
	"errors"

	"bazaar/backend/internal/comment/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a comment repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const commentColumns = `id, website_id, product_slug, author_id, content, created_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	var c domain.Comment
	err := row.Scan(&c.ID, &c.WebsiteID, &c.ProductSlug, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, websiteID, slug string, limit, offset int) ([]*domain.Comment, int, error) {
	total, err := r.CountByProduct(ctx, websiteID, slug)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE website_id = $1 AND product_slug = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		websiteID, slug, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.WebsiteID, &c.ProductSlug, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) CountByProduct(ctx context.Context, websiteID, slug string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM comments WHERE website_id = $1 AND product_slug = $2`,
		websiteID, slug,
	).Scan(&total)
	return total, err
}

func (r *PostgresRepository) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.WebsiteID, c.ProductSlug, c.AuthorID, c.Content, c.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}
